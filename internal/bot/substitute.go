package bot

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{(\w+)\}`)

// Substitute fills {key} placeholders in a response template from a fetched
// catalog record. components, casting_time, and damage_types have dedicated
// renderings; other list values are comma-joined. An unknown key is an
// authoring error in the intents data and fails hard.
//
// The empty damage_types rendering is the literal "not do": the intent
// templates phrase the sentence as "does {damage_types} damage", which this
// turns into "does not do damage".
func Substitute(template string, record map[string]any) (string, error) {
	result := template
	for _, match := range placeholderRe.FindAllStringSubmatch(template, -1) {
		key := match[1]
		var value string
		if raw, ok := record[key]; ok {
			if key == "components" {
				value = joinList(raw)
				if material, _ := record["material"].(string); material != "" {
					value += " (" + material + ")"
				}
			} else {
				value = render(raw)
			}
		} else {
			switch key {
			case "casting_time":
				if castingTime, _ := record["castingTime"].(string); castingTime != "" {
					value = castingTime
				} else {
					value, _ = record["actionType"].(string)
				}
			case "damage_types":
				value = joinList(record["damageTypes"])
				if value == "" {
					value = "not do"
				}
			default:
				return "", fmt.Errorf("unknown placeholder %q in response template", key)
			}
		}
		result = strings.ReplaceAll(result, "{"+key+"}", value)
	}
	return result, nil
}

func render(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case []any:
		return joinList(v)
	case float64:
		// JSON numbers; catalog values are whole.
		return fmt.Sprintf("%d", int(v))
	default:
		return fmt.Sprint(v)
	}
}

func joinList(raw any) string {
	items, ok := raw.([]any)
	if !ok {
		return ""
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprint(item))
	}
	return strings.Join(parts, ", ")
}
