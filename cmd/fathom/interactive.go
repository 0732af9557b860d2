package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/kwhittle/fathom/provider"
	"github.com/kwhittle/fathom/toolserver"
)

func readLine(r *bufio.Reader) string {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}

// chooseProvider presents the two-option menu from the original workflow;
// the other provider variants stay reachable through the -m flag.
func chooseProvider(r *bufio.Reader) provider.Kind {
	fmt.Println("Select model provider:")
	fmt.Println("1. Ollama (local)")
	fmt.Println("2. Claude (Anthropic)")
	for {
		fmt.Print("Choose provider [1]: ")
		switch readLine(r) {
		case "", "1":
			return provider.KindOllama
		case "2":
			return provider.KindClaude
		}
		fmt.Println("Please enter 1 or 2.")
	}
}

// collectFolders reads folder paths one per line until an empty line,
// validating each as it arrives.
func collectFolders(r *bufio.Reader) []string {
	fmt.Println("\nEnter folder paths to analyze (press Enter on empty line to finish):")
	var folders []string
	for {
		fmt.Print("Folder path: ")
		input := readLine(r)
		if input == "" {
			break
		}
		info, err := os.Stat(input)
		if err != nil || !info.IsDir() {
			fmt.Printf("Invalid directory: %s\n", input)
			continue
		}
		folders = append(folders, input)
		fmt.Printf("Added: %s\n", input)
	}
	return folders
}

func choosePrompt(r *bufio.Reader) string {
	fmt.Printf("\nEnter your prompt [%s]: ", defaultPrompt)
	if input := readLine(r); input != "" {
		return input
	}
	return defaultPrompt
}

func confirmFollowUp(r *bufio.Reader) bool {
	fmt.Print("Enable follow-up questions? [Y/n]: ")
	switch strings.ToLower(readLine(r)) {
	case "", "y", "yes":
		return true
	}
	return false
}

// chooseServers lists the catalog and resolves the reply permissively:
// invalid entries are reported and skipped, and an empty result falls back
// to the filesystem server.
func chooseServers(r *bufio.Reader, reg *toolserver.Registry) []toolserver.Descriptor {
	fmt.Println("\nAvailable tool servers:")
	for i, d := range reg.List() {
		fmt.Printf("%d. %s - %s\n", i+1, d.Name, d.Description)
	}
	fmt.Print("Choose tool servers (comma-separated ids or numbers) [filesystem]: ")
	return toolserver.SelectLoose(readLine(r), reg, defaultServers(reg), func(msg string) {
		fmt.Printf("Warning: %s\n", msg)
	})
}
