package fetcher

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
)

// DecodeJSONArray streams the elements of a JSON array of records.
// With key empty the document must be the array itself, as sheet-to-JSON
// proxies such as opensheet return it. Otherwise the document must be an
// object and the array is read from its top-level field key, which is how
// proxies that name rows after the sheet lay it out. Other fields are skipped.
// Both channels are closed when decoding stops; at most one error is sent.
func DecodeJSONArray[T any](ctx context.Context, r io.Reader, key string) (<-chan T, <-chan error) {
	outCh := make(chan T, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(outCh)
		defer close(errCh)

		dec := json.NewDecoder(r)
		if key != "" {
			if err := seekField(dec, key); err != nil {
				errCh <- err
				return
			}
		}
		if err := expectDelim(dec, '['); err != nil {
			errCh <- err
			return
		}

		for dec.More() {
			if err := ctx.Err(); err != nil {
				errCh <- eris.Wrap(err, "json: decode cancelled")
				return
			}

			var rec T
			if err := dec.Decode(&rec); err != nil {
				errCh <- eris.Wrap(err, "json: decode record")
				return
			}

			select {
			case outCh <- rec:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "json: decode cancelled")
				return
			}
		}

		if err := expectDelim(dec, ']'); err != nil {
			errCh <- err
		}
	}()

	return outCh, errCh
}

// ReadJSONArray decodes every record into memory.
func ReadJSONArray[T any](ctx context.Context, r io.Reader, key string) ([]T, error) {
	ch, errCh := DecodeJSONArray[T](ctx, r, key)

	var out []T
	for rec := range ch {
		out = append(out, rec)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	return out, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err == io.EOF {
		return eris.Errorf("json: document ended before %q", want)
	}
	if err != nil {
		return eris.Wrap(err, "json: read token")
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return eris.Errorf("json: expected %q, got %v", want, tok)
	}
	return nil
}

// seekField positions dec on the value of the top-level field key.
func seekField(dec *json.Decoder, key string) error {
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return eris.Wrap(err, "json: read field name")
		}
		name, _ := tok.(string)
		if name == key {
			return nil
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return eris.Wrapf(err, "json: skip field %q", name)
		}
	}
	return eris.Errorf("json: field %q not found", key)
}
