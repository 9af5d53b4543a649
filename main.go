package main

import "github.com/shouni/image-fetcher/cmd"

func main() {
	cmd.Execute()
}
