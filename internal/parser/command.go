package parser

import (
	"regexp"
	"strconv"
	"strings"

	"shuttle/internal/domain"
)

// CommandKind identifies a driver chat command.
type CommandKind int

const (
	CommandUnknown CommandKind = iota
	CommandLocation
	CommandAccept
	CommandDecline
)

// DriverHelp is the reply sent for unrecognised driver messages.
const DriverHelp = "Driver commands: ACCEPT <id>, DECLINE <id>, or LOC <lat> <lng>."

// LocationHelp is the reply sent for malformed location updates.
const LocationHelp = "Please send location as: LOC <lat> <lng>"

var (
	locPattern     = regexp.MustCompile(`(?i)^loc`)
	acceptPattern  = regexp.MustCompile(`(?i)^accept\s+(\S+)`)
	declinePattern = regexp.MustCompile(`(?i)^decline\s+(\S+)`)
	coordSplitter  = regexp.MustCompile(`[ ,]+`)
)

// DriverCommand is a parsed driver chat message.
type DriverCommand struct {
	Kind      CommandKind
	BookingID string
	Position  *domain.LatLng // nil for a malformed LOC command
}

// ParseDriverCommand recognises LOC, ACCEPT and DECLINE messages.
func ParseDriverCommand(body string) DriverCommand {
	body = strings.TrimSpace(body)

	if locPattern.MatchString(body) {
		cmd := DriverCommand{Kind: CommandLocation}
		fields := coordSplitter.Split(strings.TrimSpace(body[3:]), -1)
		if len(fields) < 2 {
			return cmd
		}
		lat, errLat := strconv.ParseFloat(fields[0], 64)
		lng, errLng := strconv.ParseFloat(fields[1], 64)
		if errLat != nil || errLng != nil {
			return cmd
		}
		pos := domain.LatLng{Lat: lat, Lng: lng}
		if pos.Valid() {
			cmd.Position = &pos
		}
		return cmd
	}

	if m := acceptPattern.FindStringSubmatch(body); m != nil {
		return DriverCommand{Kind: CommandAccept, BookingID: strings.TrimPrefix(m[1], "#")}
	}
	if m := declinePattern.FindStringSubmatch(body); m != nil {
		return DriverCommand{Kind: CommandDecline, BookingID: strings.TrimPrefix(m[1], "#")}
	}
	return DriverCommand{Kind: CommandUnknown}
}
