/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ssargent/isulog/cmd/isulog/cmd"

func main() {
	cmd.Execute()
}
