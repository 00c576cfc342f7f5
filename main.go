/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/Seann-Moser/pca9685/cmd"

func main() {
	cmd.Execute()
}
