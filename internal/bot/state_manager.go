package bot

import (
	"strconv"
	"time"

	goCache "github.com/patrickmn/go-cache"
)

// Input kinds a user can be asked for.
const (
	stateAwaitingID       = "awaiting_id"
	stateAwaitingField    = "awaiting_field"
	stateAwaitingDatabase = "awaiting_database"
)

// stateTTL bounds how long the bot waits for a requested input.
const stateTTL = 10 * time.Minute

// UserState saves a context for next message from user.
type UserState struct {
	WaitingFor string
	Entity     string // record entity the input belongs to
	Field      string // wire key of the field being edited
}

// StateManager manages the pending inputs of all users. States expire after stateTTL.
type StateManager struct {
	states *goCache.Cache
}

func NewStateManager() *StateManager {
	return &StateManager{states: goCache.New(stateTTL, 2*stateTTL)}
}

// Set sets the state for the user.
func (sm *StateManager) Set(userID int64, state UserState) {
	sm.states.Set(stateKey(userID), state, goCache.DefaultExpiration)
}

// Get gets and immediately deletes the user state.
func (sm *StateManager) Get(userID int64) (UserState, bool) {
	key := stateKey(userID)

	value, ok := sm.states.Get(key)
	if !ok {
		return UserState{}, false
	}
	sm.states.Delete(key)

	state, ok := value.(UserState)
	return state, ok
}

// Clear drops any pending input of the user.
func (sm *StateManager) Clear(userID int64) {
	sm.states.Delete(stateKey(userID))
}

func stateKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
