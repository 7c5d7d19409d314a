package main

import (
	"context"

	"onlinesync/cmd/onlinesync/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
