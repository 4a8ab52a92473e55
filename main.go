package main

import "github.com/khirfan/makeitbig/internal/cmd"

func main() {
	cmd.Parse()
}
