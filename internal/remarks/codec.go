// Package remarks 在单一备注文本字段里编解码结构化的客户信息。
// 历史数据没有独立的结构化列，统一走 "Key: value, Key: value" 格式。
package remarks

import (
	"strings"
)

// Fields 备注里承载的结构化字段
type Fields struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Problem string `json:"problem"`
}

type pair struct {
	key   string
	value string
}

// Decode 解析备注文本为结构化字段。
// 按逗号切段，段内取第一个冒号分割键值，键名做大小写不敏感的子串匹配。
// 键名同时含多个关键词时以先匹配到的为准（如 "OldPhone" 归入 Phone），
// 这是历史数据决定的行为，保持不动。
func Decode(s string) Fields {
	f, _ := parse(s)
	return f
}

// Encode 将字段合并进已有备注文本并重新序列化。
// 新值覆盖同名旧值，无法识别的旧字段原样保留。
func Encode(existing string, f Fields) string {
	old, extras := parse(existing)

	if f.Name == "" {
		f.Name = old.Name
	}
	if f.Phone == "" {
		f.Phone = old.Phone
	}
	if f.Address == "" {
		f.Address = old.Address
	}
	if f.Problem == "" {
		f.Problem = old.Problem
	}

	segments := make([]string, 0, 4+len(extras))
	if f.Name != "" {
		segments = append(segments, "Name: "+f.Name)
	}
	if f.Phone != "" {
		segments = append(segments, "Phone: "+f.Phone)
	}
	if f.Address != "" {
		segments = append(segments, "Address: "+f.Address)
	}
	if f.Problem != "" {
		segments = append(segments, "Problem: "+f.Problem)
	}
	for _, p := range extras {
		segments = append(segments, p.key+": "+p.value)
	}
	return strings.Join(segments, ", ")
}

func parse(s string) (Fields, []pair) {
	var f Fields
	var extras []pair

	for _, segment := range strings.Split(s, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		idx := strings.Index(segment, ":")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(segment[:idx])
		value := strings.TrimSpace(segment[idx+1:])
		if key == "" {
			continue
		}

		lower := strings.ToLower(key)
		switch {
		case strings.Contains(lower, "name"):
			f.Name = value
		case strings.Contains(lower, "phone"):
			f.Phone = value
		case strings.Contains(lower, "address"):
			f.Address = value
		case strings.Contains(lower, "problem"):
			f.Problem = value
		default:
			extras = append(extras, pair{key: key, value: value})
		}
	}
	return f, extras
}
