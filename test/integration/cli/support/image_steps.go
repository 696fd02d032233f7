package support

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/qrbridge/internal/testutil"
)

// RegisterImageSteps registers fixture steps for image inputs.
func (testCtx *TestContext) RegisterImageSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a QR image "([^"]*)" encoding "([^"]*)"$`, testCtx.aQRImageEncoding)
	sc.Step(`^a blank image "([^"]*)"$`, testCtx.aBlankImage)
	sc.Step(`^a corrupt image "([^"]*)"$`, testCtx.aCorruptImage)
	sc.Step(`^a directory "([^"]*)" with (\d+) QR images$`, testCtx.aDirectoryWithQRImages)
}

func (testCtx *TestContext) ensureParent(name string) (string, error) {
	path := testCtx.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", name, err)
	}
	return path, nil
}

func (testCtx *TestContext) aQRImageEncoding(name, text string) error {
	path, err := testCtx.ensureParent(name)
	if err != nil {
		return err
	}
	testutil.WriteQRPNG(testCtx.T, filepath.Dir(path), filepath.Base(path), text, 240)
	return nil
}

func (testCtx *TestContext) aBlankImage(name string) error {
	path, err := testCtx.ensureParent(name)
	if err != nil {
		return err
	}
	testutil.WriteBlankPNG(testCtx.T, filepath.Dir(path), filepath.Base(path), 64)
	return nil
}

func (testCtx *TestContext) aCorruptImage(name string) error {
	path, err := testCtx.ensureParent(name)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte("this is not an image"), 0o600)
}

func (testCtx *TestContext) aDirectoryWithQRImages(name string, count int) error {
	dir := testCtx.Path(name)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	for i := 1; i <= count; i++ {
		testutil.WriteQRPNG(testCtx.T, dir, fmt.Sprintf("code-%02d.png", i), fmt.Sprintf("item-%02d", i), 200)
	}
	return nil
}
