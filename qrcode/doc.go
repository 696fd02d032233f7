// Package qrcode detects and decodes QR codes through a native detector.
//
// A Detector owns one native detector handle and must be closed. Each
// detection returns a Result that is either a success with decoded
// payloads in the engine's order, or a failure with a single ErrorCode.
// Detection methods never panic and never return Go errors; check
// Result.OK or Result.Err.
//
//	det, err := qrcode.New()
//	if err != nil {
//		return err
//	}
//	defer det.Close()
//
//	res := det.DetectPath("ticket.png")
//	if err := res.Err(); err != nil {
//		return err
//	}
//	for _, p := range res.Payloads() {
//		fmt.Println(p.Text, p.Points)
//	}
//
// Every DetectX method has a DetectXAsync variant that runs on a shared
// worker pool and delivers the Result to a callback on the worker.
package qrcode
