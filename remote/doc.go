// Package remote moves csv store files between local disk and
// S3-compatible storage (via minio-go) or plain http urls.
package remote
