package main

import "github.com/powerhouse-inc/auth-editor/cmd"

func main() {
	cmd.Execute()
}
