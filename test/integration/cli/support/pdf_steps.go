package support

import (
	"os"
	"path/filepath"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/qrbridge/internal/testutil"
)

// RegisterPDFSteps registers fixture steps for PDF inputs.
func (testCtx *TestContext) RegisterPDFSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a PDF "([^"]*)" with a QR code encoding "([^"]*)"$`, testCtx.aPDFWithQRCode)
	sc.Step(`^a fake PDF "([^"]*)"$`, testCtx.aFakePDF)
}

func (testCtx *TestContext) aPDFWithQRCode(name, text string) error {
	path, err := testCtx.ensureParent(name)
	if err != nil {
		return err
	}
	testutil.WriteQRPDF(testCtx.T, filepath.Dir(path), filepath.Base(path), text)
	return nil
}

func (testCtx *TestContext) aFakePDF(name string) error {
	path, err := testCtx.ensureParent(name)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte("%PDF-1.4 truncated"), 0o600)
}
