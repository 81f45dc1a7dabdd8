// Package devtools serves a small HTTP surface for inspecting a running
// hook runtime.
//
// Routes:
//
//	GET /healthz              liveness probe
//	GET /metrics              Prometheus metrics
//	GET /debug/subscriptions  registry stats, attached subscriptions and loop stats as JSON
//	GET /ws/echo              websocket that echoes every message
//	GET /ws/stats             websocket that receives stats snapshots as they change
//
// # Usage
//
//	promReg := prometheus.NewRegistry()
//	reg := subscription.NewRegistry(subscription.WithRegisterer(promReg))
//	loop := runtime.NewLoop(runtime.Config{Registry: reg})
//
//	srv := devtools.New(reg,
//	    devtools.WithGatherer(promReg),
//	    devtools.WithLoop(loop),
//	)
//	go srv.Watch(ctx, time.Second)
//	err := srv.ListenAndServe(ctx, "localhost:7070")
package devtools
