package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sashabaranov/go-openai"

	"lectern/auth"
	"lectern/chat"
	"lectern/config"
	"lectern/library"
	"lectern/logging"
	"lectern/roadmap"
	"lectern/tui"
)

func main() {
	var (
		configPath = flag.String("config", "", "Config file (default: ~/.lectern/config.yaml)")
		login      = flag.String("login", "", "Record the reader name and exit")
		logout     = flag.Bool("logout", false, "Clear the recorded reader and exit")
		add        = flag.String("add", "", "Add a PDF to the library and exit")
		list       = flag.Bool("list", false, "List the library and exit")
		help       = flag.Bool("help", false, "Show help")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "A terminal reader for PDF papers with generated learning roadmaps.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                        # Start the reader\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -add paper.pdf         # Add a document from the shell\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -login ada             # Remember who is reading\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nKeys: u upload, s sidebar, p panel, c ask, e export, q quit\n")
	}
	flag.Parse()

	if *help {
		flag.Usage()
		return
	}

	if err := run(*configPath, *login, *logout, *add, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, login string, logout bool, add string, list bool) error {
	if configPath == "" {
		configPath = filepath.Join(config.Default().StateDir, "config.yaml")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	session := auth.NewStore(cfg.StateDir)
	switch {
	case login != "":
		return session.Login(login)
	case logout:
		return session.Logout()
	}

	lib, err := library.Open(cfg.LibraryDir)
	if err != nil {
		return err
	}
	defer lib.Close()

	switch {
	case add != "":
		doc, err := lib.Add(add)
		if err != nil {
			return err
		}
		fmt.Printf("Added %s (%s)\n", doc.Name, doc.ID)
		return nil
	case list:
		docs, err := lib.Documents()
		if err != nil {
			return err
		}
		for _, d := range docs {
			fmt.Printf("%s  %s\n", d.ID, d.Name)
		}
		return nil
	}

	log := logging.New(cfg.LogFile)
	defer log.Sync()

	// Without a key the chat store reports itself unconfigured instead
	// of calling the API with empty credentials.
	var completer chat.Completer
	if cfg.OpenAIKey != "" {
		completer = openai.NewClient(cfg.OpenAIKey)
	}

	app := tui.New(cfg, lib,
		roadmap.NewService(roadmap.NewOpenAIGenerator(cfg.OpenAIKey, cfg.Model), log),
		chat.NewStore(completer, cfg.Model, log),
		session,
		log,
	)
	return app.Run()
}
