// Package barcode decodes QR symbols from images.
//
// The default backend is built on gozxing. It searches the whole image and
// reports every readable symbol together with the finder pattern points
// gozxing resolves for it.
package barcode
