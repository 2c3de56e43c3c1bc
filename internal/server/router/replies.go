package router

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/server/catalog"
	"github.com/dmitrijs2005/gatekeeper/internal/server/services"
)

// maxResults caps the number of catalog items in one reply.
const maxResults = 5

const (
	replyGreeting = "Thanks for following! There is no auto-reply here. Please send your verification code to continue."

	replySuperBound        = "You are now bound as a super admin and can add or remove admins."
	replySuperAlreadyBound = "You are already a super admin."
	replyAdminBound        = "Admin binding successful."
	replyAdminAlreadyBound = "You are already an admin."

	replyUsageAddAdmin    = "Please provide the admin ID. Usage: add-admin <id>"
	replyUsageRemoveAdmin = "Please provide the admin ID. Usage: remove-admin <id>"
	replyUsageUnlock      = "Please provide the ID to unlock. Usage: unlock <id>"

	replyVerifiedOneTime  = "Verification successful (one-time code)! You can now send an item name to search."
	replyVerifiedDateCode = "Verification successful (date code)! You can now send an item name to search."

	replyCodeFailed  = "Failed to issue a one-time code, please try again."
	replyAdminNoHits = "No matching item found (admin mode)."

	resultsDisclaimer = "Resources are collected from the internet for study use only!"
)

const adminHelp = `Admin guide:
1. Issue a one-time code: send "issue code"
2. Search the catalog: send an item name
3. Add an admin (super admin only): send "add-admin <id>"
4. Remove an admin (super admin only): send "remove-admin <id>"
5. Unlock a user: send "unlock <id>"
6. Show your own ID: send "query id"`

func replyQueryID(id string) string {
	return fmt.Sprintf("Your ID: %s", id)
}

func replyQueryIDLocked(id, remaining string) string {
	return fmt.Sprintf("Your ID: %s (locked, remaining: %s)", id, remaining)
}

func replyAdminAdded(id string) string   { return fmt.Sprintf("%s has been added as an admin.", id) }
func replyAdminRemoved(id string) string { return fmt.Sprintf("%s has been removed from admins.", id) }
func replyUnlocked(id string) string     { return fmt.Sprintf("%s has been unlocked.", id) }

func replyCodeIssued(code, validity string) string {
	return fmt.Sprintf("One-time code issued: %s (valid for %s)", code, validity)
}

// formatValidity prefers whole hours so that a 24h TTL reads "24 hours".
func formatValidity(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		return fmt.Sprintf("%d hours", int64(d/time.Hour))
	}
	return services.FormatRemaining(d)
}

func replyCodeExpired(lock string) string {
	return fmt.Sprintf("This verification code has expired. Locked for %s.", lock)
}

func replyCodeWrong(lock string) string {
	return fmt.Sprintf("Wrong verification code. Locked for %s.", lock)
}

func replyQuotaExceeded(max int) string {
	return fmt.Sprintf("You have reached the daily limit of %d queries. Please come back tomorrow.", max)
}

func replyNoHits(remaining int) string {
	return fmt.Sprintf("No matching item found, please check the name.\nQueries left today: %d", remaining)
}

func replyAdminHits(items []catalog.Item) string {
	return "Admin mode: found the following:\n\n" + formatItems(items)
}

func replyHits(items []catalog.Item, remaining int) string {
	return fmt.Sprintf("%s\n\nFound the following:\n\n%s\n\nQueries left today: %d",
		resultsDisclaimer, formatItems(items), remaining)
}

func formatItems(items []catalog.Item) string {
	if len(items) > maxResults {
		items = items[:maxResults]
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		pw := it.Password
		if pw == "" {
			pw = "none"
		}
		parts = append(parts, fmt.Sprintf("%s\nDownload: %s\nPassword: %s", it.Name, it.URL, pw))
	}
	return strings.Join(parts, "\n\n")
}
