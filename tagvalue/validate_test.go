package tagvalue_test

import (
	"fmt"
	"testing"

	"github.com/fixwire/fixengine/dictionary"
	"github.com/fixwire/fixengine/tagvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingValidator struct {
	seen []string
	fail uint32
}

func (r *recordingValidator) ValidateEnum(field *dictionary.FieldDef, raw []byte) error {
	r.seen = append(r.seen, fmt.Sprintf("%d=%s", field.Tag, raw))
	if field.Tag == r.fail {
		return fmt.Errorf("value %q not in enum set for tag %d", raw, field.Tag)
	}
	return nil
}

func newOrderFrame(side string) []byte {
	body := "35=D\x0111=ORD1\x0155=MSFT\x0154=" + side + "\x0140=2\x01"
	return frameFromBody(body)
}

func TestValidate_CallsValidatorForEnumFields(t *testing.T) {
	d := loadMiniDict(t)
	dec := tagvalue.NewDecoder(d, tagvalue.DefaultConfig())
	msg, err := dec.Decode(newOrderFrame("1"))
	require.NoError(t, err)

	rv := &recordingValidator{}
	require.NoError(t, msg.Validate(d, rv))
	assert.Contains(t, rv.seen, "54=1")
}

func TestValidate_PropagatesValidatorRejection(t *testing.T) {
	d := loadMiniDict(t)
	dec := tagvalue.NewDecoder(d, tagvalue.DefaultConfig())
	msg, err := dec.Decode(newOrderFrame("9"))
	require.NoError(t, err)

	rv := &recordingValidator{fail: 54}
	err = msg.Validate(d, rv)
	require.Error(t, err)
}
