package metrics

import (
	"strconv"
	"time"

	obserrors "github.com/target/residence-console/internal/observability/errors"
	"github.com/target/residence-console/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultDenied  = "denied"
)

// APICall describes one outbound REST call.
type APICall struct {
	Resource string
	Op       string
	Status   int
	Duration time.Duration
	Err      error
}

// EmitAPICall emits api.request (count) and api.duration (timing).
func EmitAPICall(sink statsd.Sink, in APICall) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"resource": in.Resource,
		"op":       in.Op,
		"result":   ResultSuccess,
	}
	if in.Status != 0 {
		tags["status"] = strconv.Itoa(in.Status)
	}
	if in.Err != nil {
		tags["result"] = ResultError
		tags["error_class"] = obserrors.Classify(in.Err)
	}
	sink.Count("api.request", 1, tags)
	if in.Duration > 0 {
		sink.Timing("api.duration", in.Duration, tags)
	}
}

// EmitLogin counts login attempts by auth mode and result.
func EmitLogin(sink statsd.Sink, mode, result string) {
	if sink == nil {
		return
	}
	sink.Count("auth.login", 1, map[string]string{"mode": mode, "result": result})
}

// EmitAccessDenied counts gate rejections of logged-in users.
func EmitAccessDenied(sink statsd.Sink, route, role string) {
	if sink == nil {
		return
	}
	sink.Count("access.denied", 1, map[string]string{"route": route, "role": role})
}

// EmitMutation counts successful console mutations.
func EmitMutation(sink statsd.Sink, resource, action string) {
	if sink == nil {
		return
	}
	sink.Count("resource.mutation", 1, map[string]string{"resource": resource, "action": action})
}
