package simhost

import "github.com/energysched/energysched/internal/engine"

// physTask tracks a task's execution progress against its host VM's
// machine, so the simulator can compute a completion time once the task
// is attached to a VM.
type physTask struct {
	id                    engine.TaskId
	requiredCPUType       engine.CPUType
	requiredVMType        engine.VMType
	memory                int64
	gpuCapable            bool
	requiredSLA           engine.SLAClass
	priority              engine.Priority
	remainingInstructions int64

	arrival    engine.Time
	deadline   engine.Time // arrival + SLA-class target latency
	completion engine.Time // 0 until TaskComplete fires
}

func (t *physTask) info() engine.TaskInfo {
	return engine.TaskInfo{
		ID:                    t.id,
		RequiredCPUType:       t.requiredCPUType,
		RequiredVMType:        t.requiredVMType,
		Memory:                t.memory,
		GPUCapable:            t.gpuCapable,
		RequiredSLA:           t.requiredSLA,
		Priority:              t.priority,
		RemainingInstructions: t.remainingInstructions,
		Completion:            t.completion,
	}
}
