package constant

import "time"

const (
	// Length of the nanoid handed to each signer as their access token.
	SIGNER_TOKEN_LENGTH = 32

	// Upload limit for source documents.
	MAX_DOCUMENT_SIZE = 20 << 20

	DOCUMENT_URL_EXPIRY = 60 * time.Minute

	QR_CODE_SIZE = 256
)

type AuditRole string

const (
	AuditRoleOwner  AuditRole = "owner"
	AuditRoleSigner AuditRole = "signer"
	AuditRoleSystem AuditRole = "system"
)
