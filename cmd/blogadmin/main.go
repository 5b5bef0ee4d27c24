package main

import "github.com/anonto42/nano-blog/backend/cmd/blogadmin/commands"

func main() {
	commands.Execute()
}
