// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package devkit

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("RunTool", func() {
	var root string

	BeforeEach(func() {
		if runtime.GOOS == "windows" {
			Skip("uses a posix shell")
		}

		root = GinkgoT().TempDir()
	})

	It("Should run the configured command in the project", func() {
		dk, err := New(Config{Tools: map[string]string{"where": `sh -c "pwd; echo oops >&2"`}})
		Expect(err).ToNot(HaveOccurred())

		stdout := bytes.NewBuffer(nil)
		stderr := bytes.NewBuffer(nil)
		err = dk.RunTool(context.Background(), RunRequest{Command: "where", Dir: root, Stdout: stdout, Stderr: stderr})
		Expect(err).ToNot(HaveOccurred())

		resolved, err := filepath.EvalSymlinks(root)
		Expect(err).ToNot(HaveOccurred())
		Expect(stdout.String()).To(Or(Equal(root+"\n"), Equal(resolved+"\n")))
		Expect(stderr.String()).To(Equal("oops\n"))
	})

	It("Should prefer the virtual environment", func() {
		Expect(os.MkdirAll(filepath.Join(root, ".venv", "bin"), 0755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(root, ".venv", "bin", "pytest"), []byte("#!/bin/sh\necho venv pytest $@\n"), 0755)).To(Succeed())

		dk, err := New(Config{})
		Expect(err).ToNot(HaveOccurred())

		stdout := bytes.NewBuffer(nil)
		Expect(dk.RunTool(context.Background(), RunRequest{Command: "test", Dir: root, Stdout: stdout})).To(Succeed())
		Expect(stdout.String()).To(Equal("venv pytest\n"))
	})

	It("Should report failing commands", func() {
		dk, err := New(Config{Tools: map[string]string{"fail": `sh -c "exit 3"`}})
		Expect(err).ToNot(HaveOccurred())

		err = dk.RunTool(context.Background(), RunRequest{Command: "fail", Dir: root})
		var exitErr *exec.ExitError
		Expect(errors.As(err, &exitErr)).To(BeTrue())
		Expect(exitErr.ExitCode()).To(Equal(3))
		Expect(err).To(MatchError(ContainSubstring("fail failed")))
	})

	It("Should fail for unknown commands", func() {
		dk, err := New(Config{})
		Expect(err).ToNot(HaveOccurred())

		err = dk.RunTool(context.Background(), RunRequest{Command: "deploy", Dir: root})
		Expect(err).To(MatchError(ContainSubstring(`unknown command "deploy"`)))
	})

	It("Should fail for missing directories", func() {
		dk, err := New(Config{})
		Expect(err).ToNot(HaveOccurred())

		err = dk.RunTool(context.Background(), RunRequest{Command: "test", Dir: filepath.Join(root, "missing")})
		Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
	})

	It("Should fail for programs that cannot be found", func() {
		dk, err := New(Config{Tools: map[string]string{"test": "devkit-missing-program"}})
		Expect(err).ToNot(HaveOccurred())

		err = dk.RunTool(context.Background(), RunRequest{Command: "test", Dir: root})
		Expect(err).To(MatchError(ContainSubstring("cannot run test")))
	})
})
