package model

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"school-backend/errs"
)

// reserved keys are owned by the store and never taken from a request body.
var reserved = map[string]bool{
	"id":        true,
	"_id":       true,
	"createdAt": true,
	"updatedAt": true,
}

// ParseID converts the string form of a document id.
func ParseID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, errs.Invalidf("invalid id %q", id)
	}
	return objID, nil
}

// taggedFields maps the names declared under tag on the struct type of v to
// the field types.
func taggedFields(v interface{}, tag string) map[string]reflect.Type {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	fields := make(map[string]reflect.Type, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := strings.Split(f.Tag.Get(tag), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		fields[name] = f.Type
	}
	return fields
}

func addExtra(extra map[string]interface{}, key string, value interface{}) map[string]interface{} {
	if extra == nil {
		extra = make(map[string]interface{})
	}
	extra[key] = value
	return extra
}

// decodeWithExtra unmarshals data into v. Keys v does not declare, keys
// whose value does not fit the declared type and null values are returned
// as extras with the value the caller sent. Keys in drop are discarded.
func decodeWithExtra(data []byte, v interface{}, drop map[string]bool) (map[string]interface{}, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}

	fields := taggedFields(v, "json")
	known := make(map[string]json.RawMessage, len(all))
	var extra map[string]interface{}
	for key, raw := range all {
		if drop[key] {
			continue
		}
		if t, ok := fields[key]; ok && !isJSONNull(raw) && fitsJSON(t, raw) {
			known[key] = raw
			continue
		}
		var value interface{}
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, err
		}
		extra = addExtra(extra, key, value)
	}

	clean, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(clean, v); err != nil {
		return nil, err
	}
	return extra, nil
}

func isJSONNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

func fitsJSON(t reflect.Type, raw json.RawMessage) bool {
	return json.Unmarshal(raw, reflect.New(t).Interface()) == nil
}

// encodeWithExtra marshals v and merges extra into the result. An extra
// replaces a declared key of the same name; keys in skip are never written.
func encodeWithExtra(v interface{}, extra map[string]interface{}, skip map[string]bool) ([]byte, error) {
	base, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return base, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, err
	}
	for key, value := range extra {
		if skip[key] {
			continue
		}
		raw, err := json.Marshal(Normalize(value))
		if err != nil {
			return nil, err
		}
		fields[key] = raw
	}
	return json.Marshal(fields)
}

// marshalBSONWithExtra encodes v and merges extra the same way
// encodeWithExtra does. Extra keys are appended in sorted order.
func marshalBSONWithExtra(v interface{}, extra map[string]interface{}, skip map[string]bool) ([]byte, error) {
	base, err := bson.Marshal(v)
	if err != nil || len(extra) == 0 {
		return base, err
	}
	var doc bson.D
	if err := bson.Unmarshal(base, &doc); err != nil {
		return nil, err
	}
	index := make(map[string]int, len(doc))
	for i, e := range doc {
		index[e.Key] = i
	}
	keys := make([]string, 0, len(extra))
	for key := range extra {
		if !skip[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		if i, ok := index[key]; ok {
			doc[i].Value = extra[key]
			continue
		}
		doc = append(doc, bson.E{Key: key, Value: extra[key]})
	}
	return bson.Marshal(doc)
}

// unmarshalBSONWithExtra decodes a stored document into v and returns what
// v cannot hold as extras, following the rules of decodeWithExtra.
func unmarshalBSONWithExtra(data []byte, v interface{}) (map[string]interface{}, error) {
	elems, err := bson.Raw(data).Elements()
	if err != nil {
		return nil, err
	}

	fields := taggedFields(v, "bson")
	known := make(bson.D, 0, len(elems))
	var extra map[string]interface{}
	for _, elem := range elems {
		key, value := elem.Key(), elem.Value()
		if t, ok := fields[key]; ok && value.Type != bsontype.Null && value.Unmarshal(reflect.New(t).Interface()) == nil {
			known = append(known, bson.E{Key: key, Value: value})
			continue
		}
		var loose interface{}
		if err := value.Unmarshal(&loose); err != nil {
			return nil, err
		}
		extra = addExtra(extra, key, loose)
	}

	clean, err := bson.Marshal(known)
	if err != nil {
		return nil, err
	}
	if err := bson.Unmarshal(clean, v); err != nil {
		return nil, err
	}
	return extra, nil
}

// Normalize turns values decoded from BSON into plain JSON-friendly values:
// documents become maps, arrays become slices, datetimes become time.Time.
func Normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case primitive.D:
		m := make(map[string]interface{}, len(t))
		for _, e := range t {
			m[e.Key] = Normalize(e.Value)
		}
		return m
	case primitive.M:
		return normalizeMap(t)
	case map[string]interface{}:
		return normalizeMap(t)
	case primitive.A:
		return normalizeSlice(t)
	case []interface{}:
		return normalizeSlice(t)
	case primitive.DateTime:
		return t.Time().UTC()
	default:
		return v
	}
}

func normalizeMap(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = Normalize(v)
	}
	return out
}

func normalizeSlice(in []interface{}) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = Normalize(v)
	}
	return out
}

// setDoc builds the $set document for a patch: the non-nil fields of patch,
// the pass-through extras and a fresh updatedAt. Extras include explicit
// nulls, which clear the stored value.
func setDoc(patch interface{}, extra map[string]interface{}, now time.Time) (bson.M, error) {
	raw, err := bson.Marshal(patch)
	if err != nil {
		return nil, err
	}
	set := bson.M{}
	if err := bson.Unmarshal(raw, &set); err != nil {
		return nil, err
	}
	for key, value := range extra {
		if _, taken := set[key]; taken || reserved[key] {
			continue
		}
		set[key] = value
	}
	set["updatedAt"] = now
	return set, nil
}
