package fingerprint

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/fossas/vsi-scan/pkg/stream"
)

// binaryPrefixSize is the number of leading bytes inspected to decide
// whether a stream is binary. This is git's own heuristic.
const binaryPrefixSize = 8000

// preemptionCheckInterval bounds how many writer calls pass between
// cancellation checks while hashing a single file; see
// pkg/stream.NewPreemptableWriter.
const preemptionCheckInterval = 32

// Compute produces Combined over the full contents of stream, which must
// support seeking back to the start between the raw and comment-stripped
// passes. cancelled, if closed, aborts the operation at its next periodic
// cancellation check (see preemptionCheckInterval).
func Compute(content io.ReadSeeker, cancelled <-chan struct{}) (Combined, error) {
	raw, err := computeRaw(content, cancelled)
	if err != nil {
		return Combined{}, fmt.Errorf("compute raw fingerprint: %w", err)
	}
	if _, err := content.Seek(0, io.SeekStart); err != nil {
		return Combined{}, fmt.Errorf("rewind stream: %w", err)
	}
	stripped, err := computeCommentStripped(content, cancelled)
	if err != nil {
		return Combined{}, fmt.Errorf("compute comment-stripped fingerprint: %w", err)
	}
	return Combined{Raw: raw, CommentStripped: stripped}, nil
}

// isBinary inspects the first binaryPrefixSize bytes of r for a NUL byte.
// It returns those bytes alongside the verdict so the caller can continue
// reading the stream without losing the prefix already consumed.
func isBinary(r io.Reader) (prefix []byte, binary bool, err error) {
	prefix = make([]byte, binaryPrefixSize)
	n, err := io.ReadFull(r, prefix)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, false, err
	}
	prefix = prefix[:n]
	return prefix, bytes.IndexByte(prefix, 0) != -1, nil
}

// computeRaw hashes the exact bytes of a binary stream, or the
// CRLF-normalized bytes of a text stream.
func computeRaw(content io.Reader, cancelled <-chan struct{}) (Fingerprint, error) {
	prefix, binary, err := isBinary(content)
	if err != nil {
		return Fingerprint{}, err
	}

	full := io.MultiReader(bytes.NewReader(prefix), content)
	hasher := sha256.New()
	w := stream.NewPreemptableWriter(hasher, cancelled, preemptionCheckInterval)

	if binary {
		if _, err := io.Copy(w, full); err != nil {
			return Fingerprint{}, err
		}
	} else if err := copyNormalizingCRLF(w, full); err != nil {
		return Fingerprint{}, err
	}

	var digest [sha256.Size]byte
	copy(digest[:], hasher.Sum(nil))
	return Fingerprint{Kind: RawSHA256, Digest: digest}, nil
}

// computeCommentStripped returns nil (not an error) if content is binary or
// is not valid UTF-8 at any point, per the contract that comment-stripped
// fingerprinting is simply unavailable for such content rather than a
// failure of the overall scan.
func computeCommentStripped(content io.Reader, cancelled <-chan struct{}) (*Fingerprint, error) {
	prefix, binary, err := isBinary(content)
	if err != nil {
		return nil, err
	}
	if binary {
		return nil, nil
	}

	body, err := io.ReadAll(io.MultiReader(bytes.NewReader(prefix), content))
	if err != nil {
		return nil, err
	}
	if !utf8Valid(body) {
		return nil, nil
	}

	hasher := sha256.New()
	w := stream.NewPreemptableWriter(hasher, cancelled, preemptionCheckInterval)
	if err := stripComments(body, w); err != nil {
		return nil, err
	}

	var digest [sha256.Size]byte
	copy(digest[:], hasher.Sum(nil))
	fp := Fingerprint{Kind: CommentStrippedSHA256, Digest: digest}
	return &fp, nil
}

// copyNormalizingCRLF copies src to dst, replacing every "\r\n" sequence
// with "\n". It is the only transformation applied to the raw-fingerprint
// text path, chosen so the same file checked out with different line
// endings produces identical fingerprints.
func copyNormalizingCRLF(dst io.Writer, src io.Reader) error {
	var br stream.DualModeReader = bufio.NewReaderSize(src, 64*1024)
	buf := make([]byte, 0, 64*1024)
	var pendingCR bool

	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		_, err := dst.Write(buf)
		buf = buf[:0]
		return err
	}

	for {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF {
				if pendingCR {
					buf = append(buf, '\r')
				}
				return flush()
			}
			return err
		}

		if pendingCR {
			pendingCR = false
			if b == '\n' {
				buf = append(buf, '\n')
				continue
			}
			buf = append(buf, '\r')
		}

		if b == '\r' {
			pendingCR = true
			continue
		}

		buf = append(buf, b)
		if len(buf) == cap(buf) {
			if err := flush(); err != nil {
				return err
			}
		}
	}
}
