package main

import "github.com/lurixo/reF1nd-releases/cmd/sing-box-installer/cmd"

func main() {
	cmd.Execute()
}
