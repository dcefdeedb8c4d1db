package payload

import (
	"encoding/json"

	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/codec"
)

// User is the recurring (id, login, display name) triplet Twitch uses
// to identify a broadcaster, moderator, chatter, or target user.
type User struct {
	ID    string
	Login string
	Name  string
}

// requiredUser decodes a user triplet addressed by the given prefix,
// e.g. prefix="broadcaster_user" reads broadcaster_user_id,
// broadcaster_user_login, broadcaster_user_name.
func requiredUser(obj map[string]json.RawMessage, prefix, field string) (User, error) {
	id, err := codec.RequiredString(obj, prefix+"_id", field+"."+prefix+"_id")
	if err != nil {
		return User{}, err
	}
	login, err := codec.RequiredString(obj, prefix+"_login", field+"."+prefix+"_login")
	if err != nil {
		return User{}, err
	}
	name, err := codec.RequiredString(obj, prefix+"_name", field+"."+prefix+"_name")
	if err != nil {
		return User{}, err
	}
	return User{ID: id, Login: login, Name: name}, nil
}

// optionalUser decodes a user triplet where all three fields may be
// absent/null together (e.g. anonymous gifters). If the id field is
// absent, the whole triplet is treated as absent.
func optionalUser(obj map[string]json.RawMessage, prefix, field string) (User, bool, error) {
	id, hasID, err := codec.OptionalString(obj, prefix+"_id", field+"."+prefix+"_id")
	if err != nil || !hasID {
		return User{}, false, err
	}
	login, _, err := codec.OptionalString(obj, prefix+"_login", field+"."+prefix+"_login")
	if err != nil {
		return User{}, false, err
	}
	name, _, err := codec.OptionalString(obj, prefix+"_name", field+"."+prefix+"_name")
	if err != nil {
		return User{}, false, err
	}
	return User{ID: id, Login: login, Name: name}, true, nil
}
