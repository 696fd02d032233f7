package support

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/qrbridge/internal/native"
	"github.com/MeKo-Tech/qrbridge/internal/native/nativetest"
	"github.com/MeKo-Tech/qrbridge/internal/server"
)

// RegisterServerSteps registers HTTP API steps.
func (testCtx *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the server is running$`, testCtx.theServerIsRunning)
	sc.Step(`^the server is running with a limit of (\d+) requests? per minute$`, testCtx.theServerIsRunningWithRateLimit)
	sc.Step(`^the server is running on a native library that reports "([^"]*)"$`, testCtx.theServerIsRunningOnFailingLibrary)
	sc.Step(`^I send a GET request to "([^"]*)"$`, testCtx.iSendAGETRequestTo)
	sc.Step(`^I upload "([^"]*)" to "([^"]*)"$`, testCtx.iUploadTo)
	sc.Step(`^I upload "([^"]*)" to "([^"]*)" with pages "([^"]*)"$`, testCtx.iUploadWithPages)
	sc.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	sc.Step(`^the response should contain "([^"]*)"$`, testCtx.theResponseShouldContain)
	sc.Step(`^the response JSON should contain "([^"]*)"$`, testCtx.theResponseJSONShouldContain)
	sc.Step(`^the response JSON field "([^"]*)" should be "([^"]*)"$`, testCtx.theResponseJSONFieldShouldBe)
	sc.Step(`^the response header "([^"]*)" should be present$`, testCtx.theResponseHeaderShouldBePresent)
	sc.Step(`^the native library should hold no open results$`, testCtx.theNativeLibraryShouldHoldNoOpenResults)
}

func (testCtx *TestContext) theServerIsRunning() error {
	return testCtx.startTestHTTPServer(defaultServerConfig(), nil)
}

func (testCtx *TestContext) theServerIsRunningWithRateLimit(perMinute int) error {
	cfg := defaultServerConfig()
	cfg.RateLimit = server.RateLimitConfig{Enabled: true, RequestsPerMinute: perMinute}
	return testCtx.startTestHTTPServer(cfg, nil)
}

var fixtureStatuses = map[string]native.Status{
	"INVALID_HANDLE":   native.StatusInvalidHandle,
	"INVALID_INDEX":    native.StatusInvalidIndex,
	"BUFFER_TOO_SMALL": native.StatusBufferTooSmall,
	"DECODE_FAILED":    native.StatusDecodeFailed,
	"INVALID_ARGUMENT": native.StatusInvalidArgument,
	"OUT_OF_MEMORY":    native.StatusOutOfMemory,
}

func (testCtx *TestContext) theServerIsRunningOnFailingLibrary(code string) error {
	status, ok := fixtureStatuses[code]
	if !ok {
		return fmt.Errorf("unknown status %q", code)
	}
	f := nativetest.New()
	f.DetectStatus = status
	f.HandleOnError = true
	return testCtx.startTestHTTPServer(defaultServerConfig(), f)
}

func (testCtx *TestContext) iSendAGETRequestTo(path string) error {
	target, err := testCtx.serverURL(path)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	return testCtx.do(req)
}

func (testCtx *TestContext) iUploadTo(name, path string) error {
	field := "image"
	if strings.HasSuffix(path, "/pdf") {
		field = "pdf"
	}
	return testCtx.uploadFile(path, field, name, nil)
}

func (testCtx *TestContext) iUploadWithPages(name, path, pages string) error {
	return testCtx.uploadFile(path, "pdf", name, map[string]string{"pages": pages})
}

func (testCtx *TestContext) theResponseStatusShouldBe(status int) error {
	if testCtx.LastHTTPStatusCode != status {
		return fmt.Errorf("expected status %d, got %d\nBody: %s", status, testCtx.LastHTTPStatusCode, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) theResponseShouldContain(text string) error {
	if !strings.Contains(testCtx.LastHTTPResponse, text) {
		return fmt.Errorf("response does not contain '%s'\nBody: %s", text, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) responseJSON() (any, error) {
	var data any
	if err := json.Unmarshal([]byte(testCtx.LastHTTPResponse), &data); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w\nBody: %s", err, testCtx.LastHTTPResponse)
	}
	return data, nil
}

func (testCtx *TestContext) theResponseJSONShouldContain(field string) error {
	data, err := testCtx.responseJSON()
	if err != nil {
		return err
	}
	return checkFieldExists(data, field)
}

func (testCtx *TestContext) theResponseJSONFieldShouldBe(field, expected string) error {
	data, err := testCtx.responseJSON()
	if err != nil {
		return err
	}
	value, err := lookupField(data, field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(value); got != expected {
		return fmt.Errorf("field '%s' is %q, expected %q", field, got, expected)
	}
	return nil
}

func (testCtx *TestContext) theResponseHeaderShouldBePresent(name string) error {
	if testCtx.LastHTTPHeaders.Get(name) == "" {
		return fmt.Errorf("header %s missing; headers: %v", name, testCtx.LastHTTPHeaders)
	}
	return nil
}

func (testCtx *TestContext) theNativeLibraryShouldHoldNoOpenResults() error {
	if testCtx.HTTPTestServer == nil || testCtx.HTTPTestServer.Fixture == nil {
		return fmt.Errorf("server is not running on a scripted native library")
	}
	if open := testCtx.HTTPTestServer.Fixture.OpenResults(); open != 0 {
		return fmt.Errorf("%d result handle(s) still open", open)
	}
	return nil
}
