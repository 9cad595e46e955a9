package refreshcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	refreshMessageType        = "gitcontent.content.refresh"
	loadCollectionMessageType = "gitcontent.content.load_collection"
)

// Reasons accepted by RefreshCommand.
const (
	ReasonManual = "manual"
	ReasonAPI    = "api"
	ReasonCron   = "cron"
)

// RefreshCommand reloads every collection and commits the new page.
type RefreshCommand struct {
	// Reason is recorded with the load; defaults to manual.
	Reason string `json:"reason,omitempty"`
}

// Type implements command.Message.
func (RefreshCommand) Type() string { return refreshMessageType }

// Validate restricts Reason to the known triggers.
func (cmd RefreshCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Reason, validation.In(ReasonManual, ReasonAPI, ReasonCron)),
	)
}

// LoadCollectionCommand reloads one collection and replaces only its mount.
type LoadCollectionCommand struct {
	Collection string `json:"collection"`
}

// Type implements command.Message.
func (LoadCollectionCommand) Type() string { return loadCollectionMessageType }

// Validate ensures a collection name is present.
func (cmd LoadCollectionCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Collection, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("gitcontent.content.load_collection.collection_required", "collection is required")
			}
			return nil
		})),
	)
}
