package photostore

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/alicebob/miniredis/v2"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty memory store", t, func() {
		s := NewMemoryStore()

		Convey("Then unknown keys are not found", func() {
			b, found, err := s.Get(ctx, Key(DefaultKeyPrefix, "p1"))
			So(err, ShouldBeNil)
			So(found, ShouldBeFalse)
			So(b, ShouldBeNil)
		})

		Convey("When a blob is stored and the caller mutates it", func() {
			blob := []byte{1, 2, 3}
			So(s.Put(ctx, "player_photo_p1", blob), ShouldBeNil)
			blob[0] = 9

			Convey("Then the stored copy is unaffected", func() {
				got, found, err := s.Get(ctx, "player_photo_p1")
				So(err, ShouldBeNil)
				So(found, ShouldBeTrue)
				So(got, ShouldResemble, []byte{1, 2, 3})
				So(s.Len(), ShouldEqual, 1)
			})
		})
	})
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a redis store backed by miniredis", t, func() {
		mr := miniredis.RunT(t)
		s, err := NewRedisStore(ctx, mr.Addr(), "", 0)
		So(err, ShouldBeNil)
		defer s.Close()

		Convey("When a photo is stored", func() {
			So(s.Put(ctx, "player_photo_p7", []byte("jpeg-bytes")), ShouldBeNil)

			Convey("Then it round-trips through redis", func() {
				got, found, err := s.Get(ctx, "player_photo_p7")
				So(err, ShouldBeNil)
				So(found, ShouldBeTrue)
				So(string(got), ShouldEqual, "jpeg-bytes")
				raw, _ := mr.Get("player_photo_p7")
				So(raw, ShouldEqual, "jpeg-bytes")
			})
		})

		Convey("Then a missing key is not an error", func() {
			_, found, err := s.Get(ctx, "player_photo_none")
			So(err, ShouldBeNil)
			So(found, ShouldBeFalse)
		})

		Convey("When redis goes away", func() {
			mr.Close()

			Convey("Then operations report store failures", func() {
				_, _, err := s.Get(ctx, "player_photo_p7")
				So(err, ShouldWrap, ErrStoreFailure)
				So(s.Put(ctx, "k", []byte("v")), ShouldWrap, ErrStoreFailure)
			})
		})
	})

	Convey("Given an unreachable redis", t, func() {
		_, err := NewRedisStore(ctx, "127.0.0.1:1", "", 0)
		So(err, ShouldWrap, ErrStoreFailure)
	})
}

func encodePNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			// red on the left third, green in the middle, blue on the right
			switch {
			case x < w/3:
				img.Set(x, y, color.RGBA{R: 255, A: 255})
			case x < 2*w/3:
				img.Set(x, y, color.RGBA{G: 255, A: 255})
			default:
				img.Set(x, y, color.RGBA{B: 255, A: 255})
			}
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func TestNormalize(t *testing.T) {
	Convey("Given a wide png upload", t, func() {
		upload := encodePNG(600, 200)

		Convey("When normalised", func() {
			out, err := Normalize(upload)
			So(err, ShouldBeNil)

			Convey("Then a 150px square jpeg is produced", func() {
				img, err := jpeg.Decode(bytes.NewReader(out))
				So(err, ShouldBeNil)
				So(img.Bounds().Dx(), ShouldEqual, PhotoSize)
				So(img.Bounds().Dy(), ShouldEqual, PhotoSize)
			})

			Convey("Then only the centre square was kept", func() {
				img, _ := jpeg.Decode(bytes.NewReader(out))
				r, g, b, _ := img.At(75, 75).RGBA()
				So(g, ShouldBeGreaterThan, r)
				So(g, ShouldBeGreaterThan, b)
				r, g, b, _ = img.At(2, 75).RGBA()
				So(g, ShouldBeGreaterThan, r)
				So(g, ShouldBeGreaterThan, b)
			})
		})
	})

	Convey("Given bad uploads", t, func() {
		_, err := Normalize(nil)
		So(err, ShouldEqual, ErrEmptyPhoto)

		_, err = Normalize([]byte("not an image"))
		So(err, ShouldWrap, ErrDecodePhoto)

		_, err = Normalize(make([]byte, MaxUploadLen+1))
		So(err, ShouldEqual, ErrTooLarge)
	})

	Convey("Given a small png that declares a huge raster", t, func() {
		upload := withDimensions(encodePNG(4, 4), 40000, 40000)
		So(len(upload), ShouldBeLessThan, MaxUploadLen)

		Convey("When normalised", func() {
			_, err := Normalize(upload)

			Convey("Then it is rejected before decoding", func() {
				So(err, ShouldWrap, ErrTooLarge)
			})
		})
	})

	Convey("Given a png at the pixel limit", t, func() {
		cfg, err := png.DecodeConfig(bytes.NewReader(withDimensions(encodePNG(4, 4), 4096, 4096)))
		So(err, ShouldBeNil)
		So(int64(cfg.Width)*int64(cfg.Height), ShouldEqual, MaxPixels)
	})
}

// withDimensions rewrites the IHDR width and height of a png and fixes
// the chunk checksum.
func withDimensions(data []byte, w, h uint32) []byte {
	out := append([]byte(nil), data...)
	// signature(8) length(4) "IHDR"(4) width(4) height(4) ... crc after 13 data bytes
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}
