package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name MarketStatusFetcher --dir ../usecase --output usecase --outpkg usecasemock --filename market_status_fetcher_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name TokenSource --dir ../infrastructure/cartola --output infrastructure/cartola --outpkg cartolamock --filename token_source_mock.go
