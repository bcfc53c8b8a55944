package main

import (
	"log"
	"os"
	"os/exec"
	"path/filepath"
)

// Dev launcher: runs the server from the repo root.
func main() {
	projectDir, err := os.Getwd()
	if err != nil {
		log.Fatalf("Failed to determine working directory: %v", err)
	}

	serverPath := filepath.Join(projectDir, "cmd", "server")

	cmd := exec.Command("go", "run", ".")
	cmd.Dir = serverPath
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	log.Println("Starting server from", serverPath)
	if err := cmd.Run(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
