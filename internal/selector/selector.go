// Package selector searches a ROM folder by name and copies the picked files
// into a flat selection folder.
package selector

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vchilikov/mediasort/internal/console"
	"github.com/vchilikov/mediasort/internal/copier"
	"github.com/vchilikov/mediasort/internal/mediaext"
)

const DefaultExtension = ".gbc"

var ErrInvalidInput = errors.New("invalid input")

var (
	findFiles    = Find
	copyIfAbsent = copier.CopyIfAbsent
)

// Find returns every file under root whose extension equals ext and whose
// base name contains query, both compared case-insensitively. An empty query
// matches every file with the extension. Results are sorted by path.
func Find(root string, query string, ext string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("source folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source folder %s is not a directory", root)
	}

	ext = mediaext.Normalize(ext)
	if ext == "" {
		ext = DefaultExtension
	}
	query = strings.ToLower(query)

	var matches []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			// Unreadable subfolders are skipped.
			return nil
		}
		if d.IsDir() {
			return nil
		}
		name := strings.ToLower(d.Name())
		if strings.ToLower(filepath.Ext(name)) != ext {
			return nil
		}
		if strings.Contains(name, query) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", root, err)
	}
	slices.Sort(matches)
	return matches, nil
}

// ParseChoices parses a comma separated list of 1-based numbers. Numbers in
// 1..n are returned in valid, others in invalid. A token that is not a number
// rejects the whole line with ErrInvalidInput.
func ParseChoices(input string, n int) ([]int, []string, error) {
	var valid []int
	var invalid []string
	for _, token := range strings.Split(input, ",") {
		token = strings.TrimSpace(token)
		num, err := strconv.Atoi(token)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %q is not a number", ErrInvalidInput, token)
		}
		if num < 1 || num > n {
			invalid = append(invalid, token)
			continue
		}
		valid = append(valid, num)
	}
	return valid, invalid, nil
}

// Session is one interactive selection run.
type Session struct {
	Source string
	Dest   string
	Ext    string
	Logger logrus.FieldLogger
}

// Run reads game names from in until "0" or end of input. Picked files are
// copied into Dest; files already there are reported and left alone.
func (s *Session) Run(in io.Reader, out io.Writer) error {
	log := s.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	if err := os.MkdirAll(s.Dest, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", s.Dest, err)
	}

	prompt := console.NewPrompter(in, out)
	for {
		name, err := prompt.Ask("Enter a game name (or 0 to quit): ")
		if errors.Is(err, io.EOF) || (err == nil && name == "0") {
			console.WriteLine(out, "Exiting program.")
			return nil
		}
		if err != nil {
			return err
		}

		matches, err := findFiles(s.Source, name, s.Ext)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			console.Warn(out, "No files found for: %s", name)
			continue
		}

		console.Writef(out, "\nFound files for: %s\n", name)
		for i, path := range matches {
			console.Writef(out, "%d. %s\n", i+1, filepath.Base(path))
		}

		done, err := s.choose(prompt, out, log, matches)
		if err != nil {
			return err
		}
		if done {
			console.WriteLine(out, "Exiting program.")
			return nil
		}
	}
}

// choose runs the selection loop for one list of matches. It reports done
// when input ran out.
func (s *Session) choose(prompt *console.Prompter, out io.Writer, log logrus.FieldLogger, matches []string) (bool, error) {
	for {
		answer, err := prompt.Ask("Enter the numbers of the files to copy (separated by commas), or 0 to finish with this game: ")
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		if answer == "0" {
			console.WriteLine(out, "No more files will be selected for this game.")
			return false, nil
		}

		valid, invalid, err := ParseChoices(answer, len(matches))
		if err != nil {
			console.Fail(out, "Invalid input, make sure to enter only numbers separated by commas.")
			continue
		}
		for _, choice := range valid {
			s.copyOne(out, log, matches[choice-1])
		}
		for _, token := range invalid {
			console.Fail(out, "Invalid number: %s, please try again.", token)
		}
	}
}

func (s *Session) copyOne(out io.Writer, log logrus.FieldLogger, src string) {
	name := filepath.Base(src)
	entry := log.WithField("path", src)

	outcome, _, err := copyIfAbsent(src, s.Dest)
	if err != nil {
		entry.WithField("outcome", "failed").WithError(err).Error("copy failed")
		console.Fail(out, "Could not copy %s: %v", name, err)
		return
	}
	entry.WithField("outcome", outcome.String()).Info("rom selected")
	switch outcome {
	case copier.Copied:
		console.Success(out, "Copied: %s to %s", name, s.Dest)
	case copier.SkippedExisting:
		console.Warn(out, "Already in %s, skipping: %s", s.Dest, name)
	}
}
