package icon

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/vodrip/vodrip/key"
)

func TestGet(t *testing.T) {
	Convey("Given every registered icon", t, func() {
		Convey("It renders for each variant", func() {
			for _, variant := range AvailableVariants() {
				Convey("variant="+variant, func() {
					viper.Set(key.IconsVariant, variant)
					for i := range icons {
						So(Get(i), ShouldNotBeEmpty)
					}
				})
			}
		})

		Convey("The plain variant picks the plain column", func() {
			viper.Set(key.IconsVariant, "plain")
			So(Get(Download), ShouldEqual, "[v]")
			So(Get(Merge), ShouldEqual, "[+]")
		})

		Convey("It returns empty for an unknown variant", func() {
			viper.Set(key.IconsVariant, "")
			So(Get(Download), ShouldBeEmpty)
		})

		Convey("It returns empty for an unregistered icon", func() {
			viper.Set(key.IconsVariant, "emoji")
			So(Get(Icon(0)), ShouldBeEmpty)
		})
	})

	Convey("AvailableVariants returns a copy", t, func() {
		v := AvailableVariants()
		v[0] = "changed"
		So(AvailableVariants()[0], ShouldEqual, "emoji")
	})
}
