package main

import "github.com/quocvuong92/voice-assistant/cmd"

func main() {
	cmd.Execute()
}
