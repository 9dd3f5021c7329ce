package main

import "servicedesk/cmd"

func main() {
	cmd.Execute()
}
