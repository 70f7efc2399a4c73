package main

import (
	"github.com/mavinsight/cmd/agent"
)

func main() {
	agent.Execute()
}
