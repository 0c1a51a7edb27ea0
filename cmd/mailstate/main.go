package main

import "github.com/lu-zhengda/mailstate/internal/cli"

func main() {
	cli.Execute()
}
