package pedersen

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Commitments serialize as 0x-prefixed hex of the uncompressed point, the
// form any party needs for independent re-verification.

func (c Commitment) MarshalJSON() ([]byte, error) {
	return json.Marshal(hexutil.Encode(c.Bytes()))
}

func (c *Commitment) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	raw, err := hexutil.Decode(s)
	if err != nil {
		return err
	}
	dec, err := FromBytes(raw)
	if err != nil {
		return err
	}
	*c = dec
	return nil
}
