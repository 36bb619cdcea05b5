package script

import "strings"

// Event identifies a message delivered to a script.
type Event int

const (
	EventNull Event = iota
	EventInit
	EventInventoryIn
	EventInventoryOut
	EventInventoryUse
	EventSceneUse
	EventEquipIn
	EventEquipOut
	EventMain
	EventReset
	EventChat
	EventAction
	EventDead
	EventReachedTarget
	EventFight
	EventFlee
	EventHit
	EventDie
	EventLostTarget
	EventTreatIn
	EventTreatOut
	EventMove
	EventDetectPlayer
	EventUndetectPlayer
	EventCombine
	EventNPCFollow
	EventNPCFight
	EventNPCStay
	EventInventory2Open
	EventInventory2Close
	EventCustom
	EventEnterZone
	EventLeaveZone
	EventInitEnd
	EventClicked
	EventInsideZone
	EventControlledZoneInside
	EventLeaveZone2
	EventControlledZoneLeave
	EventEnterZone2
	EventControlledZoneEnter
	EventLoad
	EventSpellCast
	EventReload
	EventCollideDoor
	EventOuch
	EventHear
	EventSummoned
	EventSpellEnd
	EventSpellDecision
	EventStrike
	EventCollisionError
	EventWaypoint
	EventPathEnd
	EventCritical
	EventCollideNPC
	EventBackstab
	EventAggression
	EventCollisionErrorDetail
	EventGameReady
	EventCineEnd
	EventKeyPressed
	EventControlsOn
	EventControlsOff
	EventPathfinderFailure
	EventPathfinderSuccess
	EventTrapDisarmed
	EventBookOpen
	EventBookClose
	EventIdentify
	EventBreak
	EventSteal
	EventCollideField
	EventCursorMode
	EventExplorationMode

	eventCount
)

// Pseudo messages outside the handler table.
const (
	// EventExecuteLine runs a single statement starting at Request.Line.
	EventExecuteLine Event = 1000 + iota
	// EventDummy marks a line re-entry that jumped and now runs unbounded.
	EventDummy
)

var eventNames = [eventCount]string{
	"NULL", "INIT", "INVENTORYIN", "INVENTORYOUT", "INVENTORYUSE", "SCENEUSE",
	"EQUIPIN", "EQUIPOUT", "MAIN", "RESET", "CHAT", "ACTION", "DEAD",
	"REACHEDTARGET", "FIGHT", "FLEE", "HIT", "DIE", "LOSTTARGET", "TREATIN",
	"TREATOUT", "MOVE", "DETECTPLAYER", "UNDETECTPLAYER", "COMBINE",
	"NPC_FOLLOW", "NPC_FIGHT", "NPC_STAY", "INVENTORY2_OPEN", "INVENTORY2_CLOSE",
	"CUSTOM", "ENTER_ZONE", "LEAVE_ZONE", "INITEND", "CLICKED", "INSIDEZONE",
	"CONTROLLEDZONE_INSIDE", "LEAVEZONE", "CONTROLLEDZONE_LEAVE", "ENTERZONE",
	"CONTROLLEDZONE_ENTER", "LOAD", "SPELLCAST", "RELOAD", "COLLIDE_DOOR",
	"OUCH", "HEAR", "SUMMONED", "SPELLEND", "SPELLDECISION", "STRIKE",
	"COLLISION_ERROR", "WAYPOINT", "PATHEND", "CRITICAL", "COLLIDE_NPC",
	"BACKSTAB", "AGGRESSION", "COLLISION_ERROR_DETAIL", "GAME_READY",
	"CINE_END", "KEY_PRESSED", "CONTROLS_ON", "CONTROLS_OFF",
	"PATHFINDER_FAILURE", "PATHFINDER_SUCCESS", "TRAP_DISARMED", "BOOK_OPEN",
	"BOOK_CLOSE", "IDENTIFY", "BREAK", "STEAL", "COLLIDE_FIELD", "CURSORMODE",
	"EXPLORATIONMODE",
}

// Known reports whether e has a handler name.
func (e Event) Known() bool {
	return e >= EventNull && e < eventCount
}

// String returns the bare event name, e.g. "HIT".
func (e Event) String() string {
	switch {
	case e.Known():
		return eventNames[e]
	case e == EventExecuteLine:
		return "EXECUTELINE"
	case e == EventDummy:
		return "DUMMY"
	}
	return "UNKNOWN"
}

// Handler returns the text that opens the event's block, e.g. "ON HIT".
func (e Event) Handler() string {
	if !e.Known() {
		return ""
	}
	return "ON " + eventNames[e]
}

// Events returns all events that can have a handler, in table order.
func Events() []Event {
	out := make([]Event, 0, eventCount-1)
	for e := EventInit; e < eventCount; e++ {
		out = append(out, e)
	}
	return out
}

// ParseEvent resolves "HIT", "on hit" or "inventory2_open" to an event.
func ParseEvent(name string) (Event, bool) {
	name = strings.TrimSpace(name)
	if len(name) > 3 && strings.EqualFold(name[:3], "ON ") {
		name = strings.TrimSpace(name[3:])
	}
	for i, n := range eventNames {
		if strings.EqualFold(n, name) {
			return Event(i), true
		}
	}
	return EventNull, false
}

// Suppress is the per-script mask of events that SETEVENT can switch off.
type Suppress uint32

const (
	SuppressCollideNPC Suppress = 1 << iota
	SuppressChat
	SuppressHit
	SuppressInventory2Open
	SuppressHear
	SuppressDetect
	SuppressAggression
	SuppressMain
	SuppressCursorMode
	SuppressExplorationMode
)

var suppressNames = map[string]Suppress{
	"COLLIDE_NPC":     SuppressCollideNPC,
	"CHAT":            SuppressChat,
	"HIT":             SuppressHit,
	"INVENTORY2_OPEN": SuppressInventory2Open,
	"HEAR":            SuppressHear,
	"DETECTPLAYER":    SuppressDetect,
	"AGGRESSION":      SuppressAggression,
	"MAIN":            SuppressMain,
	"CURSORMODE":      SuppressCursorMode,
	"EXPLORATIONMODE": SuppressExplorationMode,
}

// ParseSuppress maps a SETEVENT name to its mask bit.
func ParseSuppress(name string) (Suppress, bool) {
	s, ok := suppressNames[strings.ToUpper(name)]
	return s, ok
}

// suppression returns the mask bit checked before delivering e, or 0.
func suppression(e Event) Suppress {
	switch e {
	case EventCollideNPC:
		return SuppressCollideNPC
	case EventChat:
		return SuppressChat
	case EventHit:
		return SuppressHit
	case EventInventory2Open:
		return SuppressInventory2Open
	case EventHear:
		return SuppressHear
	case EventDetectPlayer, EventUndetectPlayer:
		return SuppressDetect
	case EventAggression:
		return SuppressAggression
	case EventMain:
		return SuppressMain
	case EventCursorMode:
		return SuppressCursorMode
	case EventExplorationMode:
		return SuppressExplorationMode
	}
	return 0
}
