package main

import "chat-client/internal/cli"

func main() {
	cli.Execute()
}
