package karkiosk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsPage = `
<html><body>
<div class="featured-car">
  <a class="product-img" href="https://karkiosk.test/car/ford-f150-2018"></a>
  <img class="img-box" src="https://karkiosk.test/img/f150.jpg">
  <h2 class="cat-head">2018 Ford F-150 XLT</h2>
  <div class="kk-price-box"><span class="kk-price-num">$24,900</span></div>
  <ul class="kk-category-list">
    <li><span class="cate-title">Nevada</span></li>
    <li><span class="cate-title">Reno</span></li>
  </ul>
  <span data-qa="mileage">84,000 mi</span>
</div>
<div class="featured-car">
  <a class="product-img" href=""></a>
  <h2 class="cat-head">Listing without a link</h2>
</div>
</body></html>`

func TestParseCards(t *testing.T) {
	t.Parallel()

	stubs, err := ParseCards(resultsPage)
	require.NoError(t, err)
	require.Len(t, stubs, 1, "link-less card is dropped")

	s := stubs[0]
	assert.Equal(t, "2018 Ford F-150 XLT", s.Title)
	assert.Equal(t, "https://karkiosk.test/car/ford-f150-2018", s.Link)
	assert.Equal(t, "$24,900", s.Price)
	assert.Equal(t, "https://karkiosk.test/img/f150.jpg", s.Image)
	assert.Equal(t, "Nevada Reno 84,000 mi", s.Details)
}

func TestParseCardsEmptyPage(t *testing.T) {
	t.Parallel()

	stubs, err := ParseCards("<html><body></body></html>")
	require.NoError(t, err)
	assert.Empty(t, stubs)
}
