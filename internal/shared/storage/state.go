package storage

// State 后端就绪状态
type State int32

const (
	StateLoading State = iota
	StateReady
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ReadinessReporter 异步启动的后端实现该接口，用于 /ready 探针
type ReadinessReporter interface {
	State() State
}

// StateOf 返回 p 的就绪状态；未实现 ReadinessReporter 的后端视为始终就绪
func StateOf(p DataProvider) State {
	if r, ok := p.(ReadinessReporter); ok {
		return r.State()
	}
	return StateReady
}
