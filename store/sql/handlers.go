package sqlstore

import (
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

func organizationHandlers() repository.ModelHandlers[*organizationRecord] {
	return repository.ModelHandlers[*organizationRecord]{
		NewRecord: func() *organizationRecord {
			return &organizationRecord{}
		},
		// Organizations are keyed by INN, not a UUID; the UUID accessors
		// only satisfy the repository contract.
		GetID: func(record *organizationRecord) uuid.UUID {
			return uuid.Nil
		},
		SetID: func(record *organizationRecord, id uuid.UUID) {},
		GetIdentifier: func() string {
			return "inn"
		},
		GetIdentifierValue: func(record *organizationRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.INN)
		},
	}
}

func paymentHandlers() repository.ModelHandlers[*paymentRecord] {
	return repository.ModelHandlers[*paymentRecord]{
		NewRecord: func() *paymentRecord {
			return &paymentRecord{}
		},
		GetID: func(record *paymentRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *paymentRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record *paymentRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ID)
		},
	}
}

func balanceLogHandlers() repository.ModelHandlers[*balanceLogRecord] {
	return repository.ModelHandlers[*balanceLogRecord]{
		NewRecord: func() *balanceLogRecord {
			return &balanceLogRecord{}
		},
		GetID: func(record *balanceLogRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *balanceLogRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record *balanceLogRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ID)
		},
	}
}

func parseUUID(value string) uuid.UUID {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
