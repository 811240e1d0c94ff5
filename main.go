package main

import "github.com/Sheezylodhi/Scrapper/cmd"

func main() {
	cmd.Execute()
}
