// Command evloop-flowdump builds a small sample flow.Action tree, runs it to
// completion, and prints its introspection document as JSON. It exists to
// exercise flow.JSONDocument end-to-end against a tree with nested
// combinators rather than a single leaf.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/nrise/evloop"
	"github.com/nrise/evloop/flow"
)

func main() {
	eng, err := evloop.NewEngine("epoll")
	if err != nil {
		fmt.Fprintln(os.Stderr, "fail, exit:", err)
		os.Exit(1)
	}
	loop := evloop.New(eng)
	defer loop.Close()

	var attempts int
	body := flow.Func(loop, "attempt", func() bool {
		attempts++
		return attempts >= 3
	})
	retry := flow.NewRepeat(loop, "retry-until-ready", body, 5, flow.RepeatBreakSucc)

	tree := flow.NewSequence(loop, "startup",
		flow.Succ(loop, "load-config"),
		retry,
		flow.NewIfElse(loop, "post-check",
			flow.Succ(loop, "healthy"),
			flow.Succ(loop, "announce-ready"),
			flow.Fail(loop, "unreachable"),
		),
	)

	tree.SetFinishCallback(func(bool) {
		_ = loop.ExitLoop(0)
	})
	if !tree.Start() {
		fmt.Fprintln(os.Stderr, "fail, exit: tree did not start")
		os.Exit(1)
	}

	if err := loop.ExitLoop(2 * time.Second); err != nil {
		fmt.Fprintln(os.Stderr, "fail, exit:", err)
		os.Exit(1)
	}
	if err := loop.Run(evloop.RunForever); err != nil {
		fmt.Fprintln(os.Stderr, "fail, exit:", err)
		os.Exit(1)
	}

	data, err := flow.JSONDocument(tree)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fail, exit:", err)
		os.Exit(1)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		fmt.Fprintln(os.Stderr, "fail, exit:", err)
		os.Exit(1)
	}
	fmt.Println(pretty.String())
}
