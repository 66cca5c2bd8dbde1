package main

import "github.com/PCL-Community/craftauth/cmd"

func main() {
	cmd.Execute()
}
