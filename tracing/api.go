// Package tracing turns hook invocations on components into tasks that
// tracers can aggregate.
package tracing

import (
	"log"
	"reflect"

	"github.com/sarchlab/membist/sim"
)

// NamedHookable is a named domain that tasks can be reported on.
type NamedHookable interface {
	sim.Named
	sim.Hookable
	InvokeHook(sim.HookCtx)
}

// Hook positions of task events.
var (
	HookPosTaskStart = &sim.HookPos{Name: "HookPosTaskStart"}
	HookPosTaskStep  = &sim.HookPos{Name: "HookPosTaskStep"}
	HookPosTaskEnd   = &sim.HookPos{Name: "HookPosTaskEnd"}
)

// Task kinds reported by the BIST components.
const (
	// KindReqOut is a request from the time it is sent until its response
	// is taken.
	KindReqOut = "req_out"
	// KindReqIn is a request inside the memory.
	KindReqIn = "req_in"
	// KindRun is one generator or checker run.
	KindRun = "bist_run"
	// KindBenchmark is a whole orchestrated benchmark.
	KindBenchmark = "bist"
)

// StepMismatch marks a read whose data differed from the expected word.
const StepMismatch = "mismatch"

func report(domain NamedHookable, pos *sim.HookPos, task Task) {
	domain.InvokeHook(sim.HookCtx{Domain: domain, Pos: pos, Item: task})
}

// StartTask reports the start of a task on the domain.
func StartTask(
	id, parentID string,
	domain NamedHookable,
	kind, what string,
	detail any,
) {
	if domain.NumHooks() == 0 {
		return
	}

	switch {
	case id == "":
		log.Panic("task id must not be empty")
	case kind == "":
		log.Panic("task kind must not be empty")
	case what == "":
		log.Panic("task what must not be empty")
	case domain.Name() == "":
		log.Panic("domain must have a name")
	}

	report(domain, HookPosTaskStart, Task{
		ID:       id,
		ParentID: parentID,
		Kind:     kind,
		What:     what,
		Where:    domain.Name(),
		Detail:   detail,
	})
}

// AddTaskStep reports a milestone of a task.
func AddTaskStep(id string, domain NamedHookable, what string) {
	if domain.NumHooks() == 0 {
		return
	}

	report(domain, HookPosTaskStep, Task{ID: id, Steps: []TaskStep{{What: what}}})
}

// EndTask reports the end of a task.
func EndTask(id string, domain NamedHookable) {
	if domain.NumHooks() == 0 {
		return
	}

	report(domain, HookPosTaskEnd, Task{ID: id})
}

// ReqOutID is the ID of the sender-side task of the request with reqID.
func ReqOutID(reqID string) string {
	return reqID + "_req_out"
}

func reqInID(msg sim.Msg, domain NamedHookable) string {
	return msg.Meta().ID + "@" + domain.Name()
}

// TraceReqInitiate starts a KindReqOut task for a request being sent. What is
// the type of the message.
func TraceReqInitiate(msg sim.Msg, domain NamedHookable, parentID string) {
	StartTask(ReqOutID(msg.Meta().ID), parentID, domain,
		KindReqOut, reflect.TypeOf(msg).String(), msg)
}

// TraceReqReceive starts a KindReqIn task for a request taken by the
// receiver.
func TraceReqReceive(msg sim.Msg, domain NamedHookable) {
	StartTask(reqInID(msg, domain), ReqOutID(msg.Meta().ID), domain,
		KindReqIn, reflect.TypeOf(msg).String(), msg)
}

// TraceReqComplete ends the KindReqIn task of a request.
func TraceReqComplete(msg sim.Msg, domain NamedHookable) {
	EndTask(reqInID(msg, domain), domain)
}

// TraceRspStep adds a step to the request a response answers.
func TraceRspStep(rsp sim.Rsp, domain NamedHookable, what string) {
	AddTaskStep(ReqOutID(rsp.GetRspTo()), domain, what)
}

// TraceRspTaken ends the KindReqOut task of the request a response answers.
func TraceRspTaken(rsp sim.Rsp, domain NamedHookable) {
	EndTask(ReqOutID(rsp.GetRspTo()), domain)
}
