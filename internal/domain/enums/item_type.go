package enums

import "strings"

type ItemType string

const (
	ItemTypeMarketplaceItem ItemType = "marketplace_item"
	ItemTypeServiceProfile  ItemType = "service_profile"
	ItemTypeProposal        ItemType = "proposal"
	ItemTypeTutorialRequest ItemType = "tutorial_request"
)

func AllItemTypes() []ItemType {
	return []ItemType{
		ItemTypeMarketplaceItem,
		ItemTypeServiceProfile,
		ItemTypeProposal,
		ItemTypeTutorialRequest,
	}
}

func (t ItemType) Valid() bool {
	for _, known := range AllItemTypes() {
		if t == known {
			return true
		}
	}
	return false
}

func ParseItemType(raw string) (ItemType, bool) {
	itemType := ItemType(strings.ToLower(strings.TrimSpace(raw)))
	return itemType, itemType.Valid()
}

type QueueSource string

const (
	QueueSourceSubmission QueueSource = "submission"
	QueueSourceReport     QueueSource = "report"
	QueueSourceRequeue    QueueSource = "requeue"
)

// Listing names the public listing cache an item type is shown in.
func (t ItemType) Listing() string {
	switch t {
	case ItemTypeMarketplaceItem:
		return "marketplace"
	case ItemTypeServiceProfile:
		return "directory"
	case ItemTypeProposal:
		return "proposals"
	case ItemTypeTutorialRequest:
		return "tutoring"
	default:
		return ""
	}
}
