// Package certledger issues and verifies tamper-evident certificate
// records backed by an append-only ledger and a content-addressed store.
//
// A record binds a certificate image to its metadata (holder, course,
// issue date) and an immutable identifier. At issuance the image is
// fingerprinted, uploaded to the content store, and the resulting locator
// and fingerprint are committed to the ledger under the identifier —
// exactly once. Verifiers later recompute fingerprints from the bytes in
// front of them and compare against the ledger; nothing client-supplied
// is trusted.
//
// # Quick Start
//
// Issue a certificate:
//
//	store, err := ipfs.NewClient("http://localhost:5001")
//	if err != nil {
//	    return err
//	}
//	led, err := sqlite.New("/var/lib/certledger")
//	if err != nil {
//	    return err
//	}
//	c, err := certledger.NewClient(
//	    certledger.WithStore(store),
//	    certledger.WithLedger(led),
//	)
//	record, err := c.Issue(ctx, certledger.IssueRequest{
//	    ID:         "CERT-1",
//	    HolderName: "Alice",
//	    CourseName: "CS101",
//	    IssueDate:  time.Now().Unix(),
//	    Payload:    imageBytes,
//	})
//
// Verify an image against an issued record:
//
//	outcome, err := c.Verify(ctx, "CERT-1", imageBytes)
//	if outcome.RecordExists && outcome.ContentUnmodified {
//	    // genuine and byte-identical to the issued image
//	}
//
// The [ipfs] subpackage is the content store client, [ledger] defines the
// ledger boundary, and [ledger/sqlite] provides a single-node backend.
// The [httpapi] and [render] subpackages carry the serving and rendering
// layers from the core outward; neither participates in the integrity
// protocol.
package certledger
