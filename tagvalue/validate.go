package tagvalue

import "github.com/fixwire/fixengine/dictionary"

// Validate walks every field in this scope and its nested groups,
// invoking v.ValidateEnum for each field whose dictionary definition
// declares an enum set. It is the hook spec.md §9's open "advanced
// semantic validator" question resolves to: the codec ships no built-in
// enum validator, only this extension point plus dictionary.Validator.
func (s *scope) Validate(dict *dictionary.Dictionary, v dictionary.Validator) error {
	for _, tag := range s.order {
		fd, ok := dict.FieldByTag(tag)
		if ok && len(fd.Enums) > 0 {
			raw, _ := s.GetRaw(tag)
			if err := v.ValidateEnum(fd, raw); err != nil {
				return err
			}
		}
		if g, isGroup := s.groups[tag]; isGroup {
			for i := 0; i < g.Len(); i++ {
				entry, err := g.Entry(i)
				if err != nil {
					return err
				}
				if err := entry.Validate(dict, v); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
