/*
 * Copyright 2025 SREDiag Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package producer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Producer errors; returned errors wrap one of these with the system error.
var (
	ErrPrompt     = errors.New("error reading filename")
	ErrSourceOpen = errors.New("error opening file")
	ErrSourceRead = errors.New("error reading file")
	ErrSpawn      = errors.New("error creating process")
	ErrWrite      = errors.New("error writing")
)

// Prompt is written before reading the input path from the terminal.
const Prompt = "Put name of file: "

// PromptPath asks for the input path on out and reads one line from in.
// A single trailing newline is removed; the rest is used verbatim.
func PromptPath(in io.Reader, out io.Writer) (string, error) {
	if _, err := io.WriteString(out, Prompt); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWrite, err)
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%w: %w", ErrPrompt, err)
	}
	path := strings.TrimSuffix(line, "\n")
	if path == "" {
		if err == nil {
			err = errors.New("empty file name")
		}
		return "", fmt.Errorf("%w: %w", ErrPrompt, err)
	}
	return path, nil
}

// OpenSource opens the input file read-only.
func OpenSource(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		var pe *os.PathError
		if errors.As(err, &pe) {
			err = pe.Err
		}
		return nil, fmt.Errorf("%w: %w", ErrSourceOpen, err)
	}
	return f, nil
}
