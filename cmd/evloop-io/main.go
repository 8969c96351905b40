// Command evloop-io is a minimal demonstration of FdEvent: it registers two
// independent read watchers on stdin and prints what each one observes,
// showing that a file descriptor can carry more than one live subscription
// at once.
package main

import (
	"fmt"
	"os"

	"github.com/nrise/evloop"
)

func printUsage(name string) {
	fmt.Printf("Usage: %s epoll|reactor-a|reactor-b\n", name)
}

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Args[0])
		return
	}

	tag := os.Args[1]
	switch tag {
	case "epoll", "reactor-a", "reactor-b":
	default:
		printUsage(os.Args[0])
		return
	}

	eng, err := evloop.NewEngine(tag)
	if err != nil {
		fmt.Println("fail, exit:", err)
		return
	}

	loop := evloop.New(eng)
	defer loop.Close()

	fd := int(os.Stdin.Fd())

	first := loop.NewFdEvent()
	_ = first.Initialize(fd, evloop.EventRead, evloop.ModePersist, func(fired evloop.FDMask) {
		buf := make([]byte, 200)
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			return
		}
		fmt.Printf("watcher 1: fd %d input is [%s]\n", fd, buf[:n-1])
	})
	_ = first.Enable()

	second := loop.NewFdEvent()
	_ = second.Initialize(fd, evloop.EventRead, evloop.ModePersist, func(fired evloop.FDMask) {
		fmt.Println("watcher 2: stdin is ready too")
	})
	_ = second.Enable()

	if err := loop.Run(evloop.RunForever); err != nil {
		fmt.Println("loop exited with error:", err)
	}
}
