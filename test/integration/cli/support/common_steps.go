package support

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/qrbridge/cmd/qrbridge/cmd"
)

// RegisterCommonSteps registers command execution and output steps.
func (testCtx *TestContext) RegisterCommonSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I run "([^"]*)"$`, testCtx.iRunCommand)
	sc.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, testCtx.theCommandShouldFail)
	sc.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	sc.Step(`^the output should not contain "([^"]*)"$`, testCtx.theOutputShouldNotContain)
	sc.Step(`^the output should be valid JSON$`, testCtx.theOutputShouldBeValidJSON)
	sc.Step(`^the output should be valid YAML$`, testCtx.theOutputShouldBeValidYAML)
	sc.Step(`^the JSON should contain "([^"]*)"$`, testCtx.theJSONShouldContain)
	sc.Step(`^the error should mention "([^"]*)"$`, testCtx.theErrorShouldMention)
	sc.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
	sc.Step(`^the file "([^"]*)" should contain "([^"]*)"$`, testCtx.theFileShouldContain)
	sc.Step(`^the environment variable "([^"]*)" is set to "([^"]*)"$`, testCtx.SetEnv)
	sc.Step(`^a config file "([^"]*)" with:$`, testCtx.aConfigFileWith)
}

// substituteCommandVariables replaces {tmp} with the scenario directory.
func (testCtx *TestContext) substituteCommandVariables(command string) string {
	return strings.ReplaceAll(command, "{tmp}", testCtx.TempDir)
}

// iRunCommand executes the CLI in-process and stores the result.
func (testCtx *TestContext) iRunCommand(command string) error {
	command = testCtx.substituteCommandVariables(command)
	testCtx.LastCommand = command
	testCtx.LastStartTime = time.Now()

	parts := strings.Fields(command)
	if len(parts) == 0 {
		return errors.New("empty command")
	}
	if parts[0] != "qrbridge" {
		return fmt.Errorf("unsupported command %q", parts[0])
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	root := cmd.NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(parts[1:])
	err := root.ExecuteContext(ctx)

	testCtx.LastStdout = stdout.String()
	testCtx.LastOutput = stdout.String() + stderr.String()
	testCtx.LastError = err
	testCtx.LastDuration = time.Since(testCtx.LastStartTime)
	if err != nil {
		testCtx.LastExitCode = 1
	} else {
		testCtx.LastExitCode = 0
	}
	return nil
}

func (testCtx *TestContext) theCommandShouldSucceed() error {
	if testCtx.LastExitCode != 0 {
		return fmt.Errorf("command failed: %w\nOutput: %s", testCtx.LastError, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theCommandShouldFail() error {
	if testCtx.LastExitCode == 0 {
		return fmt.Errorf("command succeeded when it should have failed\nOutput: %s", testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldContain(expectedText string) error {
	expectedText = testCtx.substituteCommandVariables(expectedText)
	if !strings.Contains(testCtx.LastOutput, expectedText) {
		return fmt.Errorf("output does not contain '%s'\nActual output: %s", expectedText, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldNotContain(text string) error {
	if strings.Contains(testCtx.LastOutput, text) {
		return fmt.Errorf("output unexpectedly contains '%s'\nActual output: %s", text, testCtx.LastOutput)
	}
	return nil
}

// theOutputShouldBeValidJSON checks stdout; logs go to stderr.
func (testCtx *TestContext) theOutputShouldBeValidJSON() error {
	var js json.RawMessage
	if err := json.Unmarshal([]byte(testCtx.LastStdout), &js); err != nil {
		return fmt.Errorf("output is not valid JSON: %w\nOutput: %s", err, testCtx.LastStdout)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldBeValidYAML() error {
	var doc any
	if err := yaml.Unmarshal([]byte(testCtx.LastStdout), &doc); err != nil {
		return fmt.Errorf("output is not valid YAML: %w\nOutput: %s", err, testCtx.LastStdout)
	}
	if doc == nil {
		return errors.New("output is empty")
	}
	return nil
}

// theJSONShouldContain checks a dotted field path. A numeric segment
// indexes into an array.
func (testCtx *TestContext) theJSONShouldContain(field string) error {
	var data any
	if err := json.Unmarshal([]byte(testCtx.LastStdout), &data); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return checkFieldExists(data, field)
}

func (testCtx *TestContext) theErrorShouldMention(errorText string) error {
	if testCtx.LastError == nil {
		return fmt.Errorf("no error occurred, but expected error containing '%s'", errorText)
	}
	full := testCtx.LastOutput + " " + testCtx.LastError.Error()
	if !strings.Contains(strings.ToLower(full), strings.ToLower(errorText)) {
		return fmt.Errorf("error does not contain '%s'\nActual error: %s", errorText, full)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldExist(name string) error {
	if _, err := os.Stat(testCtx.Path(name)); err != nil {
		return fmt.Errorf("file %s does not exist: %w", name, err)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldContain(name, expected string) error {
	data, err := os.ReadFile(testCtx.Path(name))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if !strings.Contains(string(data), expected) {
		return fmt.Errorf("file %s does not contain '%s'\nContent: %s", name, expected, data)
	}
	return nil
}

func (testCtx *TestContext) aConfigFileWith(name string, content *godog.DocString) error {
	return os.WriteFile(testCtx.Path(name), []byte(content.Content), 0o600)
}
