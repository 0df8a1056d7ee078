package storage

import (
	"fmt"

	"github.com/Epistemic-Technology/emolit/models"
)

// CalculateResourcePaths lists the resource URIs a client can read for a
// stored document. The record URI is only offered once a summary exists.
func CalculateResourcePaths(doc *models.DocumentInfo) []string {
	paths := []string{
		fmt.Sprintf("summary://%s/citation", doc.DocumentID),
	}
	if len(doc.Record) > 0 {
		paths = append([]string{fmt.Sprintf("summary://%s", doc.DocumentID)}, paths...)
	}
	return paths
}
