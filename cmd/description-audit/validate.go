package main

import (
	"fmt"
	"os"

	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib"
)

// validate checks the run parameters before any record is read.
func validate(config auditConfig) error {
	if !isFile(config.Lexicon.Path) {
		return fmt.Errorf("the lexicon CSV file specified does not exist on this path: %w", lib.ErrSourceNotFound)
	}

	if !isDir(config.OutputPath) {
		return fmt.Errorf("the output path given is not a file directory: %w", lib.ErrInvalidInput)
	}

	// also rejects skipping both formats
	if config.EADPath == config.MARCXMLPath {
		return fmt.Errorf("path to at least one archival structure must be specified: %w", lib.ErrInvalidInput)
	}

	if config.EADPath != None && !isDir(config.EADPath) {
		return fmt.Errorf("the EAD path given does not lead to a directory of archival information: %w", sourceError(config.EADPath))
	}

	if config.MARCXMLPath != None && !isFile(config.MARCXMLPath) {
		return fmt.Errorf("the MARCXML archival structure does not exist on this path: %w", sourceError(config.MARCXMLPath))
	}

	return nil
}

func sourceError(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return lib.ErrSourceNotFound
	}
	return lib.ErrInvalidInput
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
