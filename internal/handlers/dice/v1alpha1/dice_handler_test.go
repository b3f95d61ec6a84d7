package v1alpha1_test

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/KirkDiggler/rpg-sheets/internal/errors"
	"github.com/KirkDiggler/rpg-sheets/internal/handlers/dice/v1alpha1"
	"github.com/KirkDiggler/rpg-sheets/internal/testutils"
)

type DiceHandlerTestSuite struct {
	suite.Suite
	ctx    context.Context
	roller *testutils.FixedRoller
	server *grpc.Server
	conn   *grpc.ClientConn
	client v1alpha1.DiceServiceClient
}

func TestDiceHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(DiceHandlerTestSuite))
}

func (s *DiceHandlerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.roller = &testutils.FixedRoller{Face: 3}

	handler, err := v1alpha1.NewDiceHandler(&v1alpha1.DiceHandlerConfig{
		Roller: s.roller,
	})
	s.Require().NoError(err)

	listener := bufconn.Listen(1024 * 1024)
	s.server = grpc.NewServer()
	v1alpha1.RegisterDiceServiceServer(s.server, handler)
	go func() {
		_ = s.server.Serve(listener)
	}()

	s.conn, err = grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	s.Require().NoError(err)
	s.client = v1alpha1.NewDiceServiceClient(s.conn)
}

func (s *DiceHandlerTestSuite) TearDownTest() {
	_ = s.conn.Close()
	s.server.Stop()
}

func (s *DiceHandlerTestSuite) roll(fields map[string]any) *structpb.Struct {
	req, err := structpb.NewStruct(fields)
	s.Require().NoError(err)
	resp, err := s.client.Roll(s.ctx, req)
	s.Require().NoError(err)
	return resp
}

func (s *DiceHandlerTestSuite) TestParse_Success() {
	resp, err := s.client.Parse(s.ctx, wrapperspb.String("1d8 + 2d6 + 4"))
	s.Require().NoError(err)

	fields := resp.AsMap()
	s.Equal("d8+2d6+4", fields["notation"])
	s.Equal(float64(4), fields["modifier"])
	s.Equal(float64(3), fields["dice_count"])
	s.Equal(float64(15), fields["average"])
	s.Equal(float64(7), fields["min"])
	s.Equal(float64(24), fields["max"])
}

func (s *DiceHandlerTestSuite) TestParse_Invalid() {
	testCases := []struct {
		name     string
		notation string
	}{
		{name: "empty", notation: ""},
		{name: "garbage", notation: "fireball"},
		{name: "zero faces", notation: "2d0"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.client.Parse(s.ctx, wrapperspb.String(tc.notation))
			s.Require().Error(err)
			st, ok := status.FromError(err)
			s.Require().True(ok)
			s.Equal(codes.InvalidArgument, st.Code())
		})
	}
}

func (s *DiceHandlerTestSuite) TestParse_ErrorCarriesNotation() {
	_, err := s.client.Parse(s.ctx, wrapperspb.String("3x6"))

	converted := errors.FromGRPCError(err)
	s.True(errors.IsInvalidArgument(converted))
	s.Equal("3x6", errors.GetMeta(converted)["notation"])
}

func (s *DiceHandlerTestSuite) TestRoll_Success() {
	fields := s.roll(map[string]any{"notation": "2d6+1"}).AsMap()

	s.Equal("2d6+1", fields["notation"])
	s.Equal([]any{float64(3), float64(3)}, fields["dice"])
	s.Equal(float64(1), fields["modifier"])
	s.Equal(float64(7), fields["total"])
}

func (s *DiceHandlerTestSuite) TestRoll_Crit() {
	fields := s.roll(map[string]any{"notation": "d8+2", "crit": true}).AsMap()

	s.Equal("2d8+2", fields["notation"])
	s.Equal(float64(8), fields["total"])
}

func (s *DiceHandlerTestSuite) TestRoll_Times() {
	s.roller.Faces = []int{1, 6, 2, 5}

	fields := s.roll(map[string]any{"notation": "2d6", "times": 2}).AsMap()

	s.Equal([]any{float64(1), float64(6), float64(2), float64(5)}, fields["dice"])
	s.Equal([]any{float64(7), float64(7)}, fields["totals"])
	s.Equal(float64(14), fields["total"])
}

func (s *DiceHandlerTestSuite) TestRoll_Flat() {
	fields := s.roll(map[string]any{"notation": "5"}).AsMap()

	s.Empty(fields["dice"])
	s.Equal(float64(5), fields["total"])
}

func (s *DiceHandlerTestSuite) TestRoll_InvalidTimes() {
	for _, times := range []any{0, 101, 1.5} {
		req, err := structpb.NewStruct(map[string]any{"notation": "d20", "times": times})
		s.Require().NoError(err)

		_, err = s.client.Roll(s.ctx, req)
		s.Equal(codes.InvalidArgument, status.Code(err), "times %v", times)
	}
}

func (s *DiceHandlerTestSuite) TestRoll_TooManyDice() {
	req, err := structpb.NewStruct(map[string]any{"notation": "100000000000000d6", "times": 100})
	s.Require().NoError(err)

	_, err = s.client.Roll(s.ctx, req)
	s.Equal(codes.InvalidArgument, status.Code(err))

	converted := errors.FromGRPCError(err)
	s.Equal("100000000000000d6", errors.GetMeta(converted)["notation"])
}

func (s *DiceHandlerTestSuite) TestRoll_MissingNotation() {
	_, err := s.client.Roll(s.ctx, &structpb.Struct{})
	s.Equal(codes.InvalidArgument, status.Code(err))
}

func (s *DiceHandlerTestSuite) TestNewDiceHandler_Validation() {
	_, err := v1alpha1.NewDiceHandler(&v1alpha1.DiceHandlerConfig{})
	s.True(errors.IsInvalidArgument(err))

	_, err = v1alpha1.NewDiceHandler(nil)
	s.True(errors.IsInvalidArgument(err))
}
