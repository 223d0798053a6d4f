package style

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JCorners68/unot/pkg/rewrite"
)

func TestConvert(t *testing.T) {
	e := rewrite.MustNew(rewrite.DefaultOptions())

	tests := []struct {
		name        string
		input       string
		want        string
		unconverted []string
		ok          bool
	}{
		{
			name:        "declaration list",
			input:       "width: 10px; height: 100%; color: #fff; display: flex; justify-content: center; margin-top: -10px !important; font-weight: 700; --x: 1; margin: 0 auto",
			want:        "w-10px h-[100%] text-[#fff] flex justify-center !-mt-10px font-bold my-0 mx-auto",
			unconverted: []string{"--x: 1"},
			ok:          true,
		},
		{
			name:  "style attribute",
			input: `<div style="background-color: rgba(0, 0, 0, .5); border-radius: 4px; font-size: 14px; cursor: pointer; display: none">`,
			want:  "bg-[rgba(0,0,0,.5)] rounded-[4px] text-[14px] cursor-pointer hidden",
			ok:    true,
		},
		{
			name:  "keywords and important",
			input: "color: red; display: flex !important; opacity: 0.5; z-index: 10",
			want:  "text-red !flex opacity-50 z-10",
			ok:    true,
		},
		{
			name:  "positions",
			input: "position: absolute; top: 0; left: 50%; line-height: 1.5; box-sizing: border-box",
			want:  "absolute top-0 left-[50%] leading-1.5 box-border",
			ok:    true,
		},
		{
			name:  "functions and border colour",
			input: "width: calc(100% - 20px); max-width: 100%; border-color: #ccc",
			want:  "w-[calc(100%-20px)] max-w-[100%] border-[#ccc] border border-solid",
			ok:    true,
		},
		{
			name:  "box shorthands",
			input: "padding: 10px 20px; margin: 1px 2px 3px 4px !important",
			want:  "py-10px px-20px !mt-1px !mr-2px !mb-3px !ml-4px",
			ok:    true,
		},
		{
			name:  "three value margin",
			input: "margin: -4px auto 0",
			want:  "-mt-4px mx-auto mb-0",
			ok:    true,
		},
		{
			name:        "nothing convertible",
			input:       "foo: bar; border: 1px solid red; margin: 1px 2px 3px 4px 5px",
			unconverted: []string{"foo: bar", "border: 1px solid red", "margin: 1px 2px 3px 4px 5px"},
		},
		{
			name: "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Convert(e, tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got.Classes)
			assert.Equal(t, tt.unconverted, got.Unconverted)
		})
	}
}

func TestTopLevelFields(t *testing.T) {
	assert.Equal(t, []string{"0", "auto"}, topLevelFields("0 auto"))
	assert.Equal(t, []string{"calc(100% - 20px)"}, topLevelFields("calc(100% - 20px)"))
	assert.Equal(t, []string{"10px"}, topLevelFields("10px"))
	assert.Empty(t, topLevelFields(""))
}
