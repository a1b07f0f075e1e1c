// Package httpapi serves the upload surface of revoice.
//
// POST /api/runs accepts a multipart "video" upload, runs it through the
// pipeline synchronously, and answers with the transcript, the corrected
// text, and a link to the re-voiced video. Run history endpoints read the
// runlog store. A semaphore bounds how many runs execute at once.
package httpapi
