//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"baccarat-lite/analyze"
)

func main() {
	js.Global().Set("__roadAnalyze", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 1 {
			return mustJSON(analyze.Response{
				OK:    false,
				Error: &analyze.Error{Reason: "invalid_request", Message: "missing request payload"},
			})
		}
		return mustJSON(handleAnalyze(args[0].String()))
	}))

	select {}
}

func handleAnalyze(raw string) analyze.Response {
	var req analyze.Request
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return analyze.Response{
			OK:    false,
			Error: &analyze.Error{Reason: "invalid_json", Message: err.Error()},
		}
	}
	return analyze.Run(req)
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		fallback := analyze.Response{
			OK:    false,
			Error: &analyze.Error{Reason: "marshal_failed", Message: err.Error()},
		}
		b2, _ := json.Marshal(fallback)
		return string(b2)
	}
	return string(b)
}
