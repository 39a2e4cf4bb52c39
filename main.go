package main

import "userbot-tma/internal/cli"

func main() {
	cli.Execute()
}
